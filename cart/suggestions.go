package cart

import (
	"strings"

	"github.com/yeremiapane/garcom-app/models"
)

var (
	sodaTags    = []string{"#Gelo", "#S/Gelo", "#Limao", "#S/Limao"}
	alcoholTags = []string{"#Com Álcool", "#Sem Álcool", "#Pouco Álcool"}
)

// SuggestedTags returns the quick note tags offered for a product.
func SuggestedTags(p *models.Product) []string {
	var tags []string
	name := strings.ToLower(p.Name)
	if p.EffectiveOptionType() == models.OptionSoda || strings.Contains(name, "coca") || strings.Contains(name, "refri") {
		tags = append(tags, sodaTags...)
	}
	if p.IsDrink {
		tags = append(tags, alcoholTags...)
	}
	return tags
}
