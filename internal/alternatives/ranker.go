package alternatives

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/foodlens-app/nutrition-mcp-server/internal/nutrition"
	"github.com/foodlens-app/nutrition-mcp-server/internal/off"
	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

const (
	maxAlternatives = 3
	searchLimit     = 10
)

// Ranker finds healthier alternatives for a scanned product by
// searching its most specific category and keeping only candidates
// that score strictly higher.
type Ranker struct {
	search off.Searcher
	log    *slog.Logger
}

// NewRanker creates a new alternatives ranker
func NewRanker(search off.Searcher, logger *slog.Logger) *Ranker {
	return &Ranker{search: search, log: logger}
}

// Find returns up to three alternatives with a strictly greater health
// score than originalScore, best first. Alternatives are an
// enhancement, never a hard failure: any collaborator error degrades
// to an empty list.
func (r *Ranker) Find(ctx context.Context, original *off.Product, originalScore int) []types.FoodAlternative {
	category := mostSpecificCategory(original.CategoriesTags)
	if category == "" {
		r.log.Debug("No category tags, skipping alternatives", "code", original.Code)
		return []types.FoodAlternative{}
	}

	candidates, err := r.search.SearchByCategory(ctx, category, searchLimit)
	if err != nil {
		r.log.Warn("Alternatives search failed, continuing without",
			"category", category,
			"error", err)
		return []types.FoodAlternative{}
	}

	alternatives := make([]types.FoodAlternative, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.Code == original.Code {
			continue
		}
		if strings.TrimSpace(candidate.ProductName) == "" {
			continue
		}

		nutrients := nutrition.MapNutrients(candidate)
		additives := nutrition.ClassifyAdditives(candidate.AdditivesTags)
		score := nutrition.HealthScore(nutrition.ScoreInput{
			Grade:          candidate.NutritionGrades,
			NovaGroup:      candidate.Nova(),
			Nutrients:      nutrients,
			RiskyAdditives: nutrition.CountRisky(additives),
		})
		if score <= originalScore {
			continue
		}

		alternatives = append(alternatives, types.FoodAlternative{
			Name:        candidate.ProductName,
			Brand:       candidate.Brands,
			HealthScore: score,
			Barcode:     candidate.Code,
			ImageURL:    candidate.ImageFrontURL,
			Reason:      reason(score-originalScore, nutrients),
		})
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		return alternatives[i].HealthScore > alternatives[j].HealthScore
	})
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	r.log.Debug("Alternatives ranked",
		"category", category,
		"candidates", len(candidates),
		"kept", len(alternatives))
	return alternatives
}

// mostSpecificCategory picks the category to search: the last tag with
// an "en:" prefix, otherwise the last tag. The language prefix is
// stripped for the categories_tags_en query parameter.
func mostSpecificCategory(tags []string) string {
	if len(tags) == 0 {
		return ""
	}

	chosen := tags[len(tags)-1]
	for i := len(tags) - 1; i >= 0; i-- {
		if strings.HasPrefix(tags[i], "en:") {
			chosen = tags[i]
			break
		}
	}
	return strings.TrimPrefix(chosen, "en:")
}

// reason generates the one-line explanation for an alternative. The
// first matching rule wins.
func reason(scoreDelta int, n types.NutrientRecord) string {
	switch {
	case scoreDelta >= 30:
		return "Much healthier option!"
	case n.Sugars < 5 && n.Protein >= 8:
		return "Lower sugar, higher protein"
	case n.Sugars < 5:
		return "Lower in sugar"
	case n.Fiber >= 4:
		return "Higher in fiber"
	case n.Protein >= 10:
		return "More protein"
	case n.SaturatedFat < 3:
		return "Lower in saturated fat"
	case scoreDelta >= 15:
		return "Healthier choice"
	default:
		return "Better option"
	}
}
