package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlens-app/nutrition-mcp-server/internal/types"
)

func TestClassifyAdditive(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		expected *types.Additive
	}{
		{
			name: "curated limited additive",
			tag:  "en:e150d-caramel-color",
			expected: &types.Additive{
				Code:        "E150D",
				Name:        "Caramel color",
				Function:    "Colorant",
				RiskLevel:   types.RiskLimited,
				Explanation: "Caramel coloring produced with sulfite and ammonia compounds",
			},
		},
		{
			name: "curated avoid additive",
			tag:  "en:e102-tartrazine",
			expected: &types.Additive{
				Code:        "E102",
				Name:        "Tartrazine",
				Function:    "Colorant",
				RiskLevel:   types.RiskAvoid,
				Explanation: "Azo dye linked to hyperactivity in children in some studies",
			},
		},
		{
			name: "uncurated code degrades to generic text",
			tag:  "en:e460-cellulose",
			expected: &types.Additive{
				Code:        "E460",
				Name:        "Cellulose",
				Function:    "Food additive",
				RiskLevel:   types.RiskSafe,
				Explanation: "Limited research available",
			},
		},
		{
			name: "multi word slug",
			tag:  "fr:e621-glutamate-monosodique",
			expected: &types.Additive{
				Code:        "E621",
				Name:        "Glutamate monosodique",
				Function:    "Flavor enhancer",
				RiskLevel:   types.RiskLimited,
				Explanation: "Flavor enhancer some people prefer to limit",
			},
		},
		{
			name: "slugless tag falls back to code",
			tag:  "en:e330",
			expected: &types.Additive{
				Code:        "E330",
				Name:        "E330",
				Function:    "Acidity regulator",
				RiskLevel:   types.RiskSafe,
				Explanation: "Citric acid, widely used and well tolerated",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAdditive(tt.tag)
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyAdditive_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tag  string
	}{
		{name: "no colon", tag: "e150d-caramel-color"},
		{name: "non e-code", tag: "en:x999-whatever"},
		{name: "code too long", tag: "en:e123456-something"},
		{name: "empty code", tag: "en:-dangling-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ClassifyAdditive(tt.tag))
		})
	}
}

func TestClassifyAdditives_DropsMalformed(t *testing.T) {
	additives := ClassifyAdditives([]string{
		"en:e322-lecithins",
		"garbage",
		"en:e951-aspartame",
	})

	require.Len(t, additives, 2)
	assert.Equal(t, "E322", additives[0].Code)
	assert.Equal(t, "E951", additives[1].Code)
}

func TestCountRisky(t *testing.T) {
	additives := ClassifyAdditives([]string{
		"en:e322-lecithins",  // safe
		"en:e951-aspartame",  // limited
		"en:e102-tartrazine", // avoid
		"en:e330-citric-acid", // safe
	})

	assert.Equal(t, 2, CountRisky(additives))
}

func TestRiskLevel_Risky(t *testing.T) {
	assert.False(t, types.RiskSafe.Risky())
	assert.True(t, types.RiskLimited.Risky())
	assert.True(t, types.RiskAvoid.Risky())
}
