package nutrition

import (
	"strings"
	"unicode"

	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

// ClassifyAdditive maps a raw additive tag of the form
// "lang:code-descriptive-slug" (e.g. "en:e150d-caramel-color") to a
// structured Additive. Returns nil for tags that do not carry a valid
// E-code.
func ClassifyAdditive(tag string) *types.Additive {
	_, rest, found := strings.Cut(tag, ":")
	if !found {
		return nil
	}

	code, slug, _ := strings.Cut(rest, "-")
	code = strings.ToUpper(strings.TrimSpace(code))
	if !strings.HasPrefix(code, "E") || len(code) > 5 {
		return nil
	}

	additive := &types.Additive{
		Code:        code,
		Name:        displayName(code, slug),
		RiskLevel:   riskLevel(code),
		Function:    genericAdditiveFunction,
		Explanation: genericAdditiveExplanation,
	}
	if function, ok := additiveFunctions[code]; ok {
		additive.Function = function
	}
	if explanation, ok := additiveExplanations[code]; ok {
		additive.Explanation = explanation
	}
	return additive
}

// ClassifyAdditives classifies a full tag list, silently dropping
// malformed tags.
func ClassifyAdditives(tags []string) []types.Additive {
	additives := make([]types.Additive, 0, len(tags))
	for _, tag := range tags {
		if additive := ClassifyAdditive(tag); additive != nil {
			additives = append(additives, *additive)
		}
	}
	return additives
}

// CountRisky counts additives flagged LIMITED or AVOID
func CountRisky(additives []types.Additive) int {
	count := 0
	for _, additive := range additives {
		if additive.RiskLevel.Risky() {
			count++
		}
	}
	return count
}

func riskLevel(code string) types.RiskLevel {
	switch {
	case additiveAvoidSet[code]:
		return types.RiskAvoid
	case additiveLimitedSet[code]:
		return types.RiskLimited
	default:
		return types.RiskSafe
	}
}

// displayName turns the descriptive slug into a human-readable name,
// falling back to the bare code for slugless tags.
func displayName(code, slug string) string {
	if slug == "" {
		return code
	}
	name := strings.ReplaceAll(slug, "-", " ")
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
