package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OptionType string

const (
	OptionPlain           OptionType = "plain"
	OptionSizePG          OptionType = "size_pg"
	OptionSoda            OptionType = "soda"
	OptionFlavors         OptionType = "flavors"
	OptionFlavorsWithSize OptionType = "flavors_with_size"
	OptionCombo           OptionType = "combo"
)

func (t OptionType) Valid() bool {
	switch t {
	case OptionPlain, OptionSizePG, OptionSoda, OptionFlavors, OptionFlavorsWithSize, OptionCombo:
		return true
	}
	return false
}

// UsesFlavors reports whether products of this type need a flavor list.
func (t OptionType) UsesFlavors() bool {
	return t == OptionFlavors || t == OptionFlavorsWithSize || t == OptionCombo
}

type Product struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	Name       string                      `gorm:"type:varchar(255);not null;index" json:"name"`
	Price      decimal.Decimal             `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Favorite   bool                        `gorm:"not null;default:false" json:"favorite"`
	LastUsedAt time.Time                   `gorm:"index" json:"last_used_at"`
	Photo      string                      `gorm:"type:text" json:"photo,omitempty"`
	OptionType OptionType                  `gorm:"type:varchar(30)" json:"option_type"`
	Flavors    datatypes.JSONSlice[string] `json:"flavors,omitempty"`
	IsDrink    bool                        `gorm:"not null;default:false" json:"is_drink"`
	// Deprecated: use OptionType. Kept so rows written before option types
	// existed still resolve to size_pg.
	HasSizeOption bool      `gorm:"not null;default:false" json:"has_size_option"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Product) EffectiveOptionType() OptionType {
	if p.OptionType != "" {
		return p.OptionType
	}
	if p.HasSizeOption {
		return OptionSizePG
	}
	return OptionPlain
}

func (p *Product) HasFlavor(name string) bool {
	for _, f := range p.Flavors {
		if f == name {
			return true
		}
	}
	return false
}
