package off

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
)

// Lookup resolves a barcode to a raw product payload.
// A nil product with a nil error means the barcode is unknown upstream;
// a non-nil error means the lookup itself failed.
type Lookup interface {
	ProductByBarcode(ctx context.Context, barcode string) (*Product, error)
}

// Searcher finds candidate products within a category, best nutrition
// grade first.
type Searcher interface {
	SearchByCategory(ctx context.Context, category string, limit int) ([]Product, error)
}

// Backend is the full product-database surface the pipeline consumes.
type Backend interface {
	Lookup
	Searcher
	HealthCheck(ctx context.Context) error
	Close() error
}

// Product is the raw Open Food Facts product payload. Every field is
// optional upstream; absent values stay at their zero value and the
// nutriments map distinguishes "missing" from "zero".
type Product struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	Brands          string         `json:"brands"`
	Quantity        string         `json:"quantity,omitempty"`
	ImageURL        string         `json:"image_url,omitempty"`
	ImageFrontURL   string         `json:"image_front_url,omitempty"`
	NutritionGrades string         `json:"nutrition_grades,omitempty"`
	NovaGroup       any            `json:"nova_group,omitempty"`
	AdditivesTags   []string       `json:"additives_tags,omitempty"`
	CategoriesTags  []string       `json:"categories_tags,omitempty"`
	EcoScoreGrade   string         `json:"ecoscore_grade,omitempty"`
	Nutriments      map[string]any `json:"nutriments,omitempty"`
}

// Nova returns the NOVA processing group as an int, or 0 when the
// upstream value is absent or unusable. The field arrives as a JSON
// number or a string depending on the dataset export.
func (p *Product) Nova() int {
	switch v := p.NovaGroup.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// Nutriment coerces a nutriments map value to a float64. The second
// return value is false when the key is absent or the value cannot be
// interpreted as a finite number.
func (p *Product) Nutriment(key string) (float64, bool) {
	if p.Nutriments == nil {
		return 0, false
	}
	v, ok := p.Nutriments[key]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case int:
		return float64(x), true
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}

// NewBackend selects the product-database backend from configuration:
// the live Open Food Facts API by default, or DuckDB over the local
// parquet dump when LOOKUP_BACKEND=parquet.
func NewBackend(cfg *config.Config, logger *slog.Logger) (Backend, error) {
	if cfg.LookupBackend == config.BackendParquet {
		return NewParquetEngine(cfg.ParquetPath, logger)
	}
	return NewClient(cfg, logger), nil
}
