package variant

import (
	"strconv"

	"github.com/yeremiapane/garcom-app/models"
)

// Selection is the option choice sent by a product picker. Only the fields
// relevant to the product's option type are read.
type Selection struct {
	Size        string   `json:"size,omitempty"`
	Container   string   `json:"container,omitempty"`
	SodaVariant string   `json:"soda_variant,omitempty"`
	Flavor      string   `json:"flavor,omitempty"`
	Flavors     []string `json:"flavors,omitempty"`
}

// FromSelection builds the key for a product and validates it.
func FromSelection(p *models.Product, sel Selection) (Key, error) {
	var k Key
	switch KindFor(p.EffectiveOptionType()) {
	case KindSize:
		k = Sized(p.ID, sel.Size)
	case KindSoda:
		k = Soda(p.ID, sel.Container, sel.SodaVariant)
	case KindFlavor:
		k = Flavored(p.ID, sel.Flavor)
	case KindFlavorSize:
		k = FlavoredSized(p.ID, sel.Flavor, sel.Size)
	case KindCombo:
		k = Combo(p.ID, sel.Flavors...)
	default:
		k = Plain(p.ID)
	}
	return k, Validate(k, p)
}

// FromSuffix builds the key "{productID}" or "{productID}-{suffix}" and
// validates it against the product.
func FromSuffix(p *models.Product, suffix string) (Key, error) {
	s := strconv.FormatUint(uint64(p.ID), 10)
	if suffix != "" {
		s += "-" + suffix
	}
	k, err := Decode(s, KindFor(p.EffectiveOptionType()))
	if err != nil {
		return Key{}, models.Invalid("variant", "%v", err)
	}
	return k, Validate(k, p)
}

// Validate checks that a key describes a selection the product offers.
func Validate(k Key, p *models.Product) error {
	if k.ProductID != p.ID {
		return models.Invalid("product_id", "key belongs to product %d, not %d", k.ProductID, p.ID)
	}
	want := KindFor(p.EffectiveOptionType())
	if k.Kind != want {
		return models.Invalid("variant", "%q expects a %s selection, got %s", p.Name, want, k.Kind)
	}

	switch k.Kind {
	case KindSize:
		return checkSize(k.Size)
	case KindSoda:
		if !contains(Containers, k.Container) {
			return models.Invalid("container", "unknown container %q", k.Container)
		}
		if !contains(SodaVariants, k.Variant) {
			return models.Invalid("soda_variant", "unknown soda variant %q", k.Variant)
		}
	case KindFlavor:
		return checkFlavor(p, k.Flavor)
	case KindFlavorSize:
		if err := checkFlavor(p, k.Flavor); err != nil {
			return err
		}
		return checkSize(k.Size)
	case KindCombo:
		flavors := k.Flavors()
		if len(flavors) == 0 {
			return models.Invalid("flavors", "select at least one flavor")
		}
		for _, f := range flavors {
			if err := checkFlavor(p, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkSize(size string) error {
	if !contains(Sizes, size) {
		return models.Invalid("size", "size must be P or G, got %q", size)
	}
	return nil
}

func checkFlavor(p *models.Product, flavor string) error {
	if flavor == "" {
		return models.Invalid("flavor", "flavor is required")
	}
	if !p.HasFlavor(flavor) {
		return models.Invalid("flavor", "%q is not a flavor of %q", flavor, p.Name)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Choices lists what a picker for the product should offer.
type Choices struct {
	Kind         Kind     `json:"kind"`
	Sizes        []string `json:"sizes,omitempty"`
	Containers   []string `json:"containers,omitempty"`
	SodaVariants []string `json:"soda_variants,omitempty"`
	Flavors      []string `json:"flavors,omitempty"`
}

func Options(p *models.Product) Choices {
	c := Choices{Kind: KindFor(p.EffectiveOptionType())}
	switch c.Kind {
	case KindSize:
		c.Sizes = Sizes
	case KindSoda:
		c.Containers = Containers
		c.SodaVariants = SodaVariants
	case KindFlavor, KindCombo:
		c.Flavors = p.Flavors
	case KindFlavorSize:
		c.Flavors = p.Flavors
		c.Sizes = Sizes
	}
	return c
}
