// Package variant identifies a product together with the options chosen for
// it (size, soda container, flavors, combo) so that identical selections
// aggregate into one cart entry.
package variant

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yeremiapane/garcom-app/models"
)

type Kind int

const (
	KindPlain Kind = iota
	KindSize
	KindSoda
	KindFlavor
	KindFlavorSize
	KindCombo
)

var kindNames = map[Kind]string{
	KindPlain:      "plain",
	KindSize:       "size",
	KindSoda:       "soda",
	KindFlavor:     "flavor",
	KindFlavorSize: "flavor_size",
	KindCombo:      "combo",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// KindFor maps a catalog option type onto the key shape it produces.
func KindFor(t models.OptionType) Kind {
	switch t {
	case models.OptionSizePG:
		return KindSize
	case models.OptionSoda:
		return KindSoda
	case models.OptionFlavors:
		return KindFlavor
	case models.OptionFlavorsWithSize:
		return KindFlavorSize
	case models.OptionCombo:
		return KindCombo
	}
	return KindPlain
}

const (
	SizeSmall = "P"
	SizeLarge = "G"

	comboMarker = "COMBINADO"
	comboSep    = "+"
	// separator for the canonical flavor set inside a comparable Key
	setSep = "\x00"
)

var (
	Sizes        = []string{SizeSmall, SizeLarge}
	Containers   = []string{"Lata", "Litro", "KS"}
	SodaVariants = []string{"Normal", "Zero"}
)

var ErrMalformedKey = errors.New("malformed variant key")

// Key is comparable and can be used directly as a map key. Combo keys hold a
// sorted, de-duplicated flavor set, so the order in which flavors were picked
// does not matter.
type Key struct {
	ProductID uint
	Kind      Kind
	Size      string
	Container string
	Variant   string
	Flavor    string
	combo     string
}

func Plain(productID uint) Key {
	return Key{ProductID: productID, Kind: KindPlain}
}

func Sized(productID uint, size string) Key {
	return Key{ProductID: productID, Kind: KindSize, Size: size}
}

func Soda(productID uint, container, variant string) Key {
	return Key{ProductID: productID, Kind: KindSoda, Container: container, Variant: variant}
}

func Flavored(productID uint, flavor string) Key {
	return Key{ProductID: productID, Kind: KindFlavor, Flavor: flavor}
}

func FlavoredSized(productID uint, flavor, size string) Key {
	return Key{ProductID: productID, Kind: KindFlavorSize, Flavor: flavor, Size: size}
}

func Combo(productID uint, flavors ...string) Key {
	set := make([]string, 0, len(flavors))
	seen := make(map[string]bool, len(flavors))
	for _, f := range flavors {
		if seen[f] {
			continue
		}
		seen[f] = true
		set = append(set, f)
	}
	sort.Strings(set)
	return Key{ProductID: productID, Kind: KindCombo, combo: strings.Join(set, setSep)}
}

// Flavors returns the flavors of a combo key in canonical order.
func (k Key) Flavors() []string {
	if k.Kind != KindCombo || k.combo == "" {
		return nil
	}
	return strings.Split(k.combo, setSep)
}

// Label is the human-readable option fragment, empty for plain products.
func (k Key) Label() string {
	switch k.Kind {
	case KindSize:
		return k.Size
	case KindSoda:
		return k.Container + " " + k.Variant
	case KindFlavor:
		return k.Flavor
	case KindFlavorSize:
		return fmt.Sprintf("%s (%s)", k.Flavor, k.Size)
	case KindCombo:
		return strings.Join(k.Flavors(), " + ")
	}
	return ""
}

// Description builds the order line text for a product name.
func (k Key) Description(productName string) string {
	label := k.Label()
	if label == "" {
		return productName
	}
	return fmt.Sprintf("%s (%s)", productName, label)
}

func (k Key) String() string {
	return Encode(k)
}

// Encode renders the key in its string form, e.g. "12-Lata-Zero" or
// "7-COMBINADO-Cupim+Frango".
func Encode(k Key) string {
	id := strconv.FormatUint(uint64(k.ProductID), 10)
	switch k.Kind {
	case KindSize:
		return id + "-" + k.Size
	case KindSoda:
		return id + "-" + k.Container + "-" + k.Variant
	case KindFlavor:
		return id + "-" + k.Flavor
	case KindFlavorSize:
		return id + "-" + k.Flavor + "-" + k.Size
	case KindCombo:
		return id + "-" + comboMarker + "-" + strings.Join(k.Flavors(), comboSep)
	}
	return id
}

// ProductIDOf returns the product segment of an encoded key.
func ProductIDOf(s string) (uint, error) {
	head, _, _ := strings.Cut(s, "-")
	id, err := strconv.ParseUint(head, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedKey, s)
	}
	return uint(id), nil
}

// Decode parses an encoded key. The kind comes from the product's option
// type, which is what lets flavor names contain hyphens (or be literally
// "COMBINADO") without ambiguity.
func Decode(s string, kind Kind) (Key, error) {
	id, err := ProductIDOf(s)
	if err != nil {
		return Key{}, err
	}
	rest := strings.Split(s, "-")[1:]
	malformed := fmt.Errorf("%w: %q is not a %s key", ErrMalformedKey, s, kind)

	switch kind {
	case KindPlain:
		if len(rest) != 0 {
			return Key{}, malformed
		}
		return Plain(id), nil
	case KindSize:
		if len(rest) != 1 || rest[0] == "" {
			return Key{}, malformed
		}
		return Sized(id, rest[0]), nil
	case KindSoda:
		if len(rest) != 2 || rest[0] == "" || rest[1] == "" {
			return Key{}, malformed
		}
		return Soda(id, rest[0], rest[1]), nil
	case KindFlavor:
		flavor := strings.Join(rest, "-")
		if flavor == "" {
			return Key{}, malformed
		}
		return Flavored(id, flavor), nil
	case KindFlavorSize:
		if len(rest) < 2 {
			return Key{}, malformed
		}
		size := rest[len(rest)-1]
		flavor := strings.Join(rest[:len(rest)-1], "-")
		if flavor == "" || size == "" {
			return Key{}, malformed
		}
		return FlavoredSized(id, flavor, size), nil
	case KindCombo:
		if len(rest) < 2 || rest[0] != comboMarker {
			return Key{}, malformed
		}
		flavors := strings.Split(strings.Join(rest[1:], "-"), comboSep)
		for _, f := range flavors {
			if f == "" {
				return Key{}, malformed
			}
		}
		return Combo(id, flavors...), nil
	}
	return Key{}, malformed
}
