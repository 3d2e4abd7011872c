package nutrition

import (
	"strings"

	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

// Health score weights. The score starts from a neutral base and every
// step is an additive adjustment, so the result is order-independent,
// but the constants themselves are load-bearing: changing any of them
// changes scores for every product.
const (
	scoreBase = 50

	gradeABonus   = 40
	gradeBBonus   = 30
	gradeCBonus   = 15
	gradeDBonus   = 5
	gradeEPenalty = -10

	novaUnprocessedBonus      = 30
	novaProcessedIngredBonus  = 20
	novaProcessedBonus        = 5
	novaUltraProcessedPenalty = -15

	proteinBonusThreshold = 10.0
	fiberBonusThreshold   = 4.0
	sugarBonusThreshold   = 5.0
	positiveNutrientBonus = 5

	sugarPenaltyThreshold  = 20.0
	satFatPenaltyThreshold = 10.0
	sodiumPenaltyThreshold = 800.0
	sugarPenalty           = 10
	satFatPenalty          = 5
	sodiumPenalty          = 5

	additivePenaltyPerRisky = 3
	additivePenaltyCap      = 15
)

// ScoreInput is everything the health score depends on
type ScoreInput struct {
	Grade          string
	NovaGroup      int
	Nutrients      types.NutrientRecord
	RiskyAdditives int
}

// HealthScore computes the 0-100 health score. Pure and deterministic:
// the same input always produces the same score.
func HealthScore(in ScoreInput) int {
	score := scoreBase

	switch strings.ToUpper(strings.TrimSpace(in.Grade)) {
	case "A":
		score += gradeABonus
	case "B":
		score += gradeBBonus
	case "C":
		score += gradeCBonus
	case "D":
		score += gradeDBonus
	case "E":
		score += gradeEPenalty
	}

	switch in.NovaGroup {
	case 1:
		score += novaUnprocessedBonus
	case 2:
		score += novaProcessedIngredBonus
	case 3:
		score += novaProcessedBonus
	case 4:
		score += novaUltraProcessedPenalty
	}

	if in.Nutrients.Protein >= proteinBonusThreshold {
		score += positiveNutrientBonus
	}
	if in.Nutrients.Fiber >= fiberBonusThreshold {
		score += positiveNutrientBonus
	}
	if in.Nutrients.Sugars <= sugarBonusThreshold {
		score += positiveNutrientBonus
	}

	if in.Nutrients.Sugars > sugarPenaltyThreshold {
		score -= sugarPenalty
	}
	if in.Nutrients.SaturatedFat > satFatPenaltyThreshold {
		score -= satFatPenalty
	}
	if in.Nutrients.Sodium > sodiumPenaltyThreshold {
		score -= sodiumPenalty
	}

	penalty := in.RiskyAdditives * additivePenaltyPerRisky
	if penalty > additivePenaltyCap {
		penalty = additivePenaltyCap
	}
	score -= penalty

	return types.ClampScore(score)
}

// HealthGrade normalizes an upstream nutrition grade letter to "A".."E",
// or "" when the grade is missing or unrecognized.
func HealthGrade(grade string) string {
	normalized := strings.ToUpper(strings.TrimSpace(grade))
	switch normalized {
	case "A", "B", "C", "D", "E":
		return normalized
	}
	return ""
}
