package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foodlens-app/nutrition-mcp-server/internal/alternatives"
	"github.com/foodlens-app/nutrition-mcp-server/internal/nutrition"
	"github.com/foodlens-app/nutrition-mcp-server/internal/ocr"
	"github.com/foodlens-app/nutrition-mcp-server/internal/off"
	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

// ErrLookupFailed marks a barcode lookup that failed in transit, as
// opposed to a barcode that is simply not in the database (nil record,
// nil error). The lookup is the primary request, so unlike the
// alternatives search its failure is surfaced to the caller.
var ErrLookupFailed = errors.New("barcode lookup failed")

// Pipeline turns raw scan signals (OCR text or a barcode) into
// structured, scored nutrition records. It is request-scoped and
// stateless: no caching, no retries, cancellation via ctx only.
type Pipeline struct {
	backend off.Backend
	drafts  *ocr.DraftBuilder
	ranker  *alternatives.Ranker
	log     *slog.Logger
}

// NewPipeline creates a new scan pipeline on top of a product-database
// backend
func NewPipeline(backend off.Backend, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		backend: backend,
		drafts:  ocr.NewDraftBuilder(logger),
		ranker:  alternatives.NewRanker(backend, logger),
		log:     logger,
	}
}

// ScanBarcode resolves a barcode to a fully scored ScannedFoodRecord.
// Returns (nil, nil) when the barcode is unknown upstream and a
// ErrLookupFailed-wrapped error when the lookup itself fails.
func (p *Pipeline) ScanBarcode(ctx context.Context, barcode string) (*types.ScannedFoodRecord, error) {
	start := time.Now()
	p.log.Debug("ScanBarcode starting", "barcode", barcode)

	product, err := p.backend.ProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if product == nil {
		p.log.Info("Barcode not found", "barcode", barcode, "duration", time.Since(start))
		return nil, nil
	}

	nutrients := nutrition.MapNutrients(product)
	additives := nutrition.ClassifyAdditives(product.AdditivesTags)
	score := nutrition.HealthScore(nutrition.ScoreInput{
		Grade:          product.NutritionGrades,
		NovaGroup:      product.Nova(),
		Nutrients:      nutrients,
		RiskyAdditives: nutrition.CountRisky(additives),
	})

	record := &types.ScannedFoodRecord{
		ID:          product.Code,
		Name:        product.ProductName,
		Brand:       product.Brands,
		Nutrients:   nutrients,
		HealthScore: score,
		HealthGrade: nutrition.HealthGrade(product.NutritionGrades),
		NovaGroup:   types.ClampNovaGroup(product.Nova()),
		Additives:   additives,
		EcoScore:    strings.ToUpper(product.EcoScoreGrade),
	}

	// Dependent enhancement step: needs the primary score, and its
	// failure degrades to an empty list inside the ranker.
	record.Alternatives = p.ranker.Find(ctx, product, score)

	p.log.Info("ScanBarcode completed",
		"barcode", barcode,
		"health_score", record.HealthScore,
		"additives", len(record.Additives),
		"alternatives", len(record.Alternatives),
		"duration", time.Since(start))
	return record, nil
}

// AnalyzeLabel extracts a confidence-scored draft from raw OCR label
// text. Returns nil when the text does not contain enough recognizable
// fields to justify a draft.
func (p *Pipeline) AnalyzeLabel(rawText string) *types.LabelOcrDraft {
	return p.drafts.Build(rawText)
}

// FindAlternatives looks up a product and returns only its healthier
// alternatives. Returns (nil, nil) when the barcode is unknown.
func (p *Pipeline) FindAlternatives(ctx context.Context, barcode string) ([]types.FoodAlternative, error) {
	product, err := p.backend.ProductByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if product == nil {
		return nil, nil
	}

	nutrients := nutrition.MapNutrients(product)
	additives := nutrition.ClassifyAdditives(product.AdditivesTags)
	score := nutrition.HealthScore(nutrition.ScoreInput{
		Grade:          product.NutritionGrades,
		NovaGroup:      product.Nova(),
		Nutrients:      nutrients,
		RiskyAdditives: nutrition.CountRisky(additives),
	})

	return p.ranker.Find(ctx, product, score), nil
}
