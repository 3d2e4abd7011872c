package ocr

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

// Confidence tiers by how much of the label was recognized. Core
// fields are calories, protein, carbs and fat.
const (
	confidenceAllCore         = 0.92
	confidenceThreeCore       = 0.78
	confidenceTwoCoreWithKcal = 0.66
	confidenceTwoCore         = 0.58
	confidenceFloor           = 0.35
)

// DraftBuilder assembles LabelOcrDraft records from raw OCR text
type DraftBuilder struct {
	log *slog.Logger
}

// NewDraftBuilder creates a new draft builder
func NewDraftBuilder(logger *slog.Logger) *DraftBuilder {
	return &DraftBuilder{log: logger}
}

// Build extracts every field from the raw label text and assigns a
// confidence score. Returns nil when fewer than two core fields were
// recognized and calories is absent: a near-empty draft is worse for
// the caller than an explicit "insufficient data".
func (b *DraftBuilder) Build(raw string) *types.LabelOcrDraft {
	extractor := NewFieldExtractor(raw)

	draft := &types.LabelOcrDraft{
		SessionID:     uuid.NewString(),
		ProductName:   extractor.ProductName(),
		ServingText:   extractor.ServingText(),
		Calories:      extractor.Calories(),
		ProteinGrams:  extractor.ProteinGrams(),
		CarbsGrams:    extractor.CarbsGrams(),
		FatGrams:      extractor.FatGrams(),
		SugarGrams:    extractor.SugarGrams(),
		FiberGrams:    extractor.FiberGrams(),
		SodiumMg:      extractor.SodiumMg(),
		ExtractedText: extractor.Text(),
	}

	coreFields := countCoreFields(draft)
	if coreFields < 2 && draft.Calories == nil {
		b.log.Debug("Rejecting OCR draft, insufficient data",
			"core_fields", coreFields,
			"text_length", len(draft.ExtractedText))
		return nil
	}

	draft.Confidence = confidence(coreFields, draft.Calories != nil)

	b.log.Debug("OCR draft built",
		"session_id", draft.SessionID,
		"core_fields", coreFields,
		"confidence", draft.Confidence,
		"has_name", draft.ProductName != nil)
	return draft
}

// countCoreFields counts the present fields among calories, protein,
// carbs and fat.
func countCoreFields(draft *types.LabelOcrDraft) int {
	count := 0
	for _, field := range []*int{draft.Calories, draft.ProteinGrams, draft.CarbsGrams, draft.FatGrams} {
		if field != nil {
			count++
		}
	}
	return count
}

// confidence maps the core-field count to the draft confidence tier
func confidence(coreFields int, hasCalories bool) float64 {
	switch {
	case coreFields >= 4:
		return confidenceAllCore
	case coreFields == 3:
		return confidenceThreeCore
	case coreFields == 2 && hasCalories:
		return confidenceTwoCoreWithKcal
	case coreFields == 2:
		return confidenceTwoCore
	default:
		return confidenceFloor
	}
}
