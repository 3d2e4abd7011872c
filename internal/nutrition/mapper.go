package nutrition

import (
	"github.com/foodlens-app/nutrition-mcp-server/internal/off"
	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

// MapNutrients converts a per-100g Open Food Facts payload into a
// NutrientRecord. Sodium arrives in grams and is stored in milligrams;
// calories are truncated to whole kcal. Missing numeric fields default
// to zero so downstream scoring arithmetic stays total.
func MapNutrients(p *off.Product) types.NutrientRecord {
	record := types.NutrientRecord{
		Calories:      int(nutrimentOrZero(p, "energy-kcal_100g")),
		Fat:           nutrimentOrZero(p, "fat_100g"),
		SaturatedFat:  nutrimentOrZero(p, "saturated-fat_100g"),
		Carbohydrates: nutrimentOrZero(p, "carbohydrates_100g"),
		Sugars:        nutrimentOrZero(p, "sugars_100g"),
		Fiber:         nutrimentOrZero(p, "fiber_100g"),
		Protein:       nutrimentOrZero(p, "proteins_100g"),
		ServingSize:   p.Quantity,
	}

	// Upstream stores sodium in grams per 100g
	record.Sodium = nutrimentOrZero(p, "sodium_100g") * 1000

	return record
}

func nutrimentOrZero(p *off.Product, key string) float64 {
	value, ok := p.Nutriment(key)
	if !ok || value < 0 {
		return 0
	}
	return value
}
