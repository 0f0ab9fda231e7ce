package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/garcom-app/live"
	"github.com/yeremiapane/garcom-app/models"
	"github.com/yeremiapane/garcom-app/utils"
)

const catalogFileVersion = 1

type CatalogFile struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Items      []models.Product `json:"items"`
}

type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// Export writes the whole catalog as an indented JSON document.
func (s *CatalogService) Export(ctx context.Context, w io.Writer) error {
	products, err := s.List(ctx)
	if err != nil {
		return err
	}
	if products == nil {
		products = []models.Product{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(CatalogFile{
		Version:    catalogFileVersion,
		ExportedAt: s.now(),
		Items:      products,
	})
}

// importItem accepts both the exported field names and the ones written by
// older versions of the app.
type importItem struct {
	Name            string           `json:"name"`
	Nome            string           `json:"nome"`
	Price           *decimal.Decimal `json:"price"`
	Preco           *decimal.Decimal `json:"preco"`
	Favorite        *bool            `json:"favorite"`
	Favorito        *bool            `json:"favorito"`
	Photo           string           `json:"photo"`
	Foto            string           `json:"foto"`
	OptionType      string           `json:"option_type"`
	TipoOpcao       string           `json:"tipoOpcao"`
	HasSizeOption   *bool            `json:"has_size_option"`
	TemOpcaoTamanho *bool            `json:"temOpcaoTamanho"`
	Flavors         []string         `json:"flavors"`
	Sabores         []string         `json:"sabores"`
	IsDrink         *bool            `json:"is_drink"`
	IsDrinkLegacy   *bool            `json:"isDrink"`
	LastUsedAt      *time.Time       `json:"last_used_at"`
	UltimoUso       *time.Time       `json:"ultimoUso"`
}

var legacyOptionTypes = map[string]models.OptionType{
	"padrao":              models.OptionPlain,
	"tamanho_pg":          models.OptionSizePG,
	"refrigerante":        models.OptionSoda,
	"sabores":             models.OptionFlavors,
	"sabores_com_tamanho": models.OptionFlavorsWithSize,
	"combinado":           models.OptionCombo,
}

func firstString(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func (it importItem) name() string {
	return firstString(it.Name, it.Nome)
}

func (it importItem) optionType() models.OptionType {
	raw := firstString(it.OptionType, it.TipoOpcao)
	if t, ok := legacyOptionTypes[raw]; ok {
		return t
	}
	if raw != "" {
		return models.OptionType(raw)
	}
	if size := firstBool(it.HasSizeOption, it.TemOpcaoTamanho); size != nil {
		if *size {
			return models.OptionSizePG
		}
		return models.OptionPlain
	}
	return ""
}

// input merges the file's values over the existing product, if any.
func (it importItem) input(existing *models.Product) ProductInput {
	in := ProductInput{Name: it.name()}
	if existing != nil {
		in.Name = existing.Name
		in.OptionType = existing.EffectiveOptionType()
		in.Price = existing.Price
		in.Favorite = existing.Favorite
		in.Photo = existing.Photo
		in.IsDrink = existing.IsDrink
		in.Flavors = existing.Flavors
	}

	if t := it.optionType(); t != "" {
		in.OptionType = t
	}
	if it.Price != nil {
		in.Price = *it.Price
	} else if it.Preco != nil {
		in.Price = *it.Preco
	}
	if fav := firstBool(it.Favorite, it.Favorito); fav != nil {
		in.Favorite = *fav
	}
	if photo := firstString(it.Photo, it.Foto); photo != "" {
		in.Photo = photo
	}
	if drink := firstBool(it.IsDrink, it.IsDrinkLegacy); drink != nil {
		in.IsDrink = *drink
	}
	if it.Flavors != nil {
		in.Flavors = it.Flavors
	} else if it.Sabores != nil {
		in.Flavors = it.Sabores
	}
	return in
}

func (it importItem) lastUsed() *time.Time {
	if it.LastUsedAt != nil {
		return it.LastUsedAt
	}
	return it.UltimoUso
}

func decodeCatalog(data []byte) ([]importItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrInvalidImport
	}

	var items []importItem
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
	} else {
		var file struct {
			Items []importItem `json:"items"`
		}
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		items = file.Items
	}
	if len(items) == 0 {
		return nil, ErrInvalidImport
	}
	return items, nil
}

// Import merges a catalog file into the store by case-insensitive name.
// Items are written one by one: a rejected item is skipped and the rest
// still go in.
func (s *CatalogService) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult

	data, err := io.ReadAll(r)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	items, err := decodeCatalog(data)
	if err != nil {
		return result, err
	}

	db := s.db.WithContext(ctx)
	var all []models.Product
	if err := db.Find(&all).Error; err != nil {
		return result, err
	}
	byName := make(map[string]*models.Product, len(all))
	for i := range all {
		byName[strings.ToLower(all[i].Name)] = &all[i]
	}

	for i, it := range items {
		existing := byName[strings.ToLower(it.name())]
		in := it.input(existing)
		if err := in.normalize(); err != nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"index": i,
				"name":  it.name(),
			}).Warnf("Skipping catalog entry: %v", err)
			result.Skipped++
			continue
		}

		if existing != nil {
			if err := db.Model(existing).Updates(productUpdates(in)).Error; err != nil {
				return result, err
			}
			result.Updated++
			continue
		}

		lastUsed := s.now()
		if t := it.lastUsed(); t != nil {
			lastUsed = t.UTC()
		}
		product := productFromInput(in, lastUsed)
		if err := db.Create(&product).Error; err != nil {
			return result, err
		}
		byName[strings.ToLower(product.Name)] = &product
		result.Created++
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	}).Info("Catalog imported")
	if result.Created+result.Updated > 0 {
		live.PublishAll(s.notify, live.EventProductsChanged)
	}
	return result, nil
}
