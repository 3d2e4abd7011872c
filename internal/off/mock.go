package off

import (
	"context"
	"strings"
)

// Mock is an in-memory Backend implementation for tests
type Mock struct {
	products  []Product
	lookupErr error
	searchErr error
}

// Ensure Mock implements the Backend interface
var _ Backend = (*Mock)(nil)

// NewMock creates a mock backend with a small fixture set: an
// ultra-processed spread and two progressively healthier spreads in the
// same category.
func NewMock() *Mock {
	return &Mock{
		products: []Product{
			{
				Code:            "3017620422003",
				ProductName:     "Hazelnut Cocoa Spread",
				Brands:          "Ferrero",
				NutritionGrades: "e",
				NovaGroup:       float64(4),
				AdditivesTags:   []string{"en:e322-lecithins", "en:e476-polyglycerol-polyricinoleate"},
				CategoriesTags:  []string{"en:breakfasts", "en:spreads", "en:hazelnut-spreads"},
				EcoScoreGrade:   "d",
				Nutriments: map[string]any{
					"energy-kcal_100g":   539.0,
					"fat_100g":           30.9,
					"saturated-fat_100g": 10.6,
					"carbohydrates_100g": 57.5,
					"sugars_100g":        56.3,
					"fiber_100g":         0.0,
					"proteins_100g":      6.3,
					"sodium_100g":        0.043,
				},
			},
			{
				Code:            "2222222222222",
				ProductName:     "Pure Hazelnut Butter",
				Brands:          "NuttyCo",
				NutritionGrades: "b",
				NovaGroup:       float64(1),
				CategoriesTags:  []string{"en:spreads", "en:hazelnut-spreads"},
				ImageFrontURL:   "https://images.example.org/2222222222222.jpg",
				Nutriments: map[string]any{
					"energy-kcal_100g":   650.0,
					"fat_100g":           61.0,
					"saturated-fat_100g": 4.5,
					"carbohydrates_100g": 17.0,
					"sugars_100g":        4.3,
					"fiber_100g":         9.7,
					"proteins_100g":      15.0,
					"sodium_100g":        0.0,
				},
			},
			{
				Code:            "3333333333333",
				ProductName:     "Cocoa Almond Spread No Added Sugar",
				Brands:          "NuttyCo",
				NutritionGrades: "c",
				NovaGroup:       float64(3),
				CategoriesTags:  []string{"en:spreads", "en:hazelnut-spreads"},
				Nutriments: map[string]any{
					"energy-kcal_100g":   580.0,
					"fat_100g":           52.0,
					"saturated-fat_100g": 6.0,
					"carbohydrates_100g": 20.0,
					"sugars_100g":        4.8,
					"fiber_100g":         8.0,
					"proteins_100g":      12.0,
					"sodium_100g":        0.01,
				},
			},
		},
	}
}

// ProductByBarcode returns the fixture with a matching code, or nil
func (m *Mock) ProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}

	for i := range m.products {
		if m.products[i].Code == barcode {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

// SearchByCategory returns fixtures whose category tags contain the category
func (m *Mock) SearchByCategory(ctx context.Context, category string, limit int) ([]Product, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	var results []Product
	for _, p := range m.products {
		for _, tag := range p.CategoriesTags {
			if strings.Contains(strings.ToLower(tag), strings.ToLower(category)) {
				results = append(results, p)
				break
			}
		}
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// HealthCheck always succeeds unless an error is forced
func (m *Mock) HealthCheck(ctx context.Context) error {
	return m.lookupErr
}

// Close closes the mock backend (no-op)
func (m *Mock) Close() error {
	return nil
}

// SetLookupError forces barcode lookups to fail
func (m *Mock) SetLookupError(err error) {
	m.lookupErr = err
}

// SetSearchError forces category searches to fail
func (m *Mock) SetSearchError(err error) {
	m.searchErr = err
}

// SetProducts replaces the fixture set
func (m *Mock) SetProducts(products []Product) {
	m.products = products
}
