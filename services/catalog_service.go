package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yeremiapane/garcom-app/cart"
	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/utils"
)

type ProductInput struct {
	Name       string            `json:"name"`
	Price      decimal.Decimal   `json:"price"`
	Favorite   bool              `json:"favorite"`
	Photo      string            `json:"photo"`
	OptionType models.OptionType `json:"option_type"`
	Flavors    []string          `json:"flavors"`
	IsDrink    bool              `json:"is_drink"`
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return models.Invalid("name", "name is required")
	}
	if in.Price.IsNegative() {
		return models.Invalid("price", "price cannot be negative")
	}
	if in.OptionType == "" {
		in.OptionType = models.OptionPlain
	}
	if !in.OptionType.Valid() {
		return models.Invalid("option_type", "unknown option type %q", in.OptionType)
	}

	if !in.OptionType.UsesFlavors() {
		in.Flavors = nil
		return nil
	}
	flavors := make([]string, 0, len(in.Flavors))
	seen := make(map[string]bool, len(in.Flavors))
	for _, f := range in.Flavors {
		f = strings.TrimSpace(f)
		if f == "" {
			return models.Invalid("flavors", "flavor names cannot be blank")
		}
		if in.OptionType == models.OptionCombo && strings.Contains(f, "+") {
			return models.Invalid("flavors", "flavor %q of a combo product cannot contain '+'", f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		flavors = append(flavors, f)
	}
	if len(flavors) == 0 {
		return models.Invalid("flavors", "%s products need at least one flavor", in.OptionType)
	}
	in.Flavors = flavors
	return nil
}

type CatalogService struct {
	db     *gorm.DB
	notify live.Notifier
	now    func() time.Time
}

func NewCatalogService(db *gorm.DB, notify live.Notifier) *CatalogService {
	return &CatalogService{db: db, notify: notify, now: utcNow}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&products).Error
	return products, err
}

// Search matches names case-insensitively. The filter runs in Go because
// SQLite's LOWER only folds ASCII and product names carry accents.
func (s *CatalogService) Search(ctx context.Context, term string) ([]models.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products, nil
	}

	matches := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// Recent returns up to limit products, most recently ordered first.
func (s *CatalogService) Recent(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		return nil, models.Invalid("recent", "limit must be greater than zero")
	}
	var products []models.Product
	err := s.db.WithContext(ctx).
		Order("last_used_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return findProduct(s.db.WithContext(ctx), id)
}

func findProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := tx.First(&product, id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &product, nil
}

// Snapshot loads the whole catalog keyed by id, for resolving cart lines.
func (s *CatalogService) Snapshot(ctx context.Context) (cart.Snapshot, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	snap := make(cart.Snapshot, len(products))
	for _, p := range products {
		snap[p.ID] = p
	}
	return snap, nil
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	product := productFromInput(in, s.now())
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		utils.ErrorLogger.Errorf("Failed to create product %q: %v", in.Name, err)
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created")
	live.PublishAll(s.notify, live.EventProductsChanged)
	return &product, nil
}

func productFromInput(in ProductInput, now time.Time) models.Product {
	return models.Product{
		Name:          in.Name,
		Price:         in.Price,
		Favorite:      in.Favorite,
		LastUsedAt:    now,
		Photo:         in.Photo,
		OptionType:    in.OptionType,
		Flavors:       datatypes.JSONSlice[string](in.Flavors),
		IsDrink:       in.IsDrink,
		HasSizeOption: in.OptionType == models.OptionSizePG,
	}
}

func productUpdates(in ProductInput) map[string]interface{} {
	return map[string]interface{}{
		"name":            in.Name,
		"price":           in.Price,
		"favorite":        in.Favorite,
		"photo":           in.Photo,
		"option_type":     in.OptionType,
		"flavors":         datatypes.JSONSlice[string](in.Flavors),
		"is_drink":        in.IsDrink,
		"has_size_option": in.OptionType == models.OptionSizePG,
	}
}

func (s *CatalogService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	var product *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if product, err = findProduct(tx, id); err != nil {
			return err
		}
		if err := tx.Model(product).Updates(productUpdates(in)).Error; err != nil {
			return err
		}
		product, err = findProduct(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("product_id", id).Info("Product updated")
	live.PublishAll(s.notify, live.EventProductsChanged)
	return product, nil
}

// Delete removes a product. Order items keep their own description, so past
// orders are unaffected.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := findProduct(tx, id)
		if err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		return err
	}

	utils.InfoLogger.WithField("product_id", id).Info("Product deleted")
	live.PublishAll(s.notify, live.EventProductsChanged)
	return nil
}

type houseProduct struct {
	Name       string
	OptionType models.OptionType
	Flavors    []string
}

var piraoFlavors = []string{"Carne de Sol", "Ao molho", "Alho e Oleo", "Fumeiro", "Sertanejo", "Cupim", "Frango", "Costela"}

// houseProducts are always present in the catalog.
var houseProducts = []houseProduct{
	{"Pastel", models.OptionFlavors, []string{"Frango com queijo", "Romeu e Julieta", "Cupim com Queijo", "Sertanejo"}},
	{"Bolinho", models.OptionFlavors, []string{"Quatro Queijos", "Calabresa com Queijo", "Bacalhau", "Frango com Queijo"}},
	{"Pirao Kids", models.OptionFlavors, []string{"Frango", "Carne de Sol", "Fumeiro"}},
	{"Porção Extra", models.OptionFlavors, []string{"Arroz", "Farofa", "Salada", "Pirao", "Banana da Terra", "Vatapa"}},
	{"Pirão", models.OptionFlavorsWithSize, piraoFlavors},
	{"Pirão G Combinado", models.OptionCombo, piraoFlavors},
}

// EnsureDefaults creates the house products that are missing and collapses
// duplicates of them (same name, any case) into a single row with the
// expected option type and flavors. Running it twice changes nothing.
func (s *CatalogService) EnsureDefaults(ctx context.Context) error {
	var created, fixed, removed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []models.Product
		if err := tx.Find(&all).Error; err != nil {
			return err
		}

		for _, want := range houseProducts {
			var matches []models.Product
			for _, p := range all {
				if strings.EqualFold(p.Name, want.Name) {
					matches = append(matches, p)
				}
			}

			if len(matches) == 0 {
				product := productFromInput(ProductInput{
					Name:       want.Name,
					OptionType: want.OptionType,
					Flavors:    want.Flavors,
				}, s.now())
				if err := tx.Create(&product).Error; err != nil {
					return err
				}
				created++
				continue
			}

			sort.SliceStable(matches, func(i, j int) bool {
				mi := matches[i].EffectiveOptionType() == want.OptionType
				mj := matches[j].EffectiveOptionType() == want.OptionType
				if mi != mj {
					return mi
				}
				return matches[i].ID > matches[j].ID
			})

			keep := matches[0]
			if keep.EffectiveOptionType() != want.OptionType || !sameFlavors(keep.Flavors, want.Flavors) {
				if err := tx.Model(&keep).Updates(map[string]interface{}{
					"option_type":     want.OptionType,
					"flavors":         datatypes.JSONSlice[string](want.Flavors),
					"has_size_option": false,
				}).Error; err != nil {
					return err
				}
				fixed++
			}

			if len(matches) > 1 {
				ids := make([]uint, 0, len(matches)-1)
				for _, dup := range matches[1:] {
					ids = append(ids, dup.ID)
				}
				if err := tx.Delete(&models.Product{}, ids).Error; err != nil {
					return err
				}
				removed += len(ids)
			}
		}
		return nil
	})
	if err != nil {
		utils.ErrorLogger.Errorf("Failed to ensure house products: %v", err)
		return err
	}

	if created+fixed+removed > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"created": created,
			"fixed":   fixed,
			"removed": removed,
		}).Info("House products ensured")
		live.PublishAll(s.notify, live.EventProductsChanged)
	}
	return nil
}

func sameFlavors(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
