package types

// RiskLevel classifies how much caution an additive warrants.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "SAFE"
	RiskLimited RiskLevel = "LIMITED"
	RiskAvoid   RiskLevel = "AVOID"
)

// Risky reports whether the additive should count against a product's
// health score.
func (r RiskLevel) Risky() bool {
	return r == RiskLimited || r == RiskAvoid
}

// NutrientRecord holds per-reference-unit nutrition values.
// Sodium is stored in milligrams, calories in kcal, everything else in
// grams. All numeric fields are >= 0.
type NutrientRecord struct {
	Calories      int     `json:"calories"`
	Fat           float64 `json:"fat"`
	SaturatedFat  float64 `json:"saturated_fat"`
	Carbohydrates float64 `json:"carbohydrates"`
	Sugars        float64 `json:"sugars"`
	Fiber         float64 `json:"fiber"`
	Protein       float64 `json:"protein"`
	Sodium        float64 `json:"sodium"`
	ServingSize   string  `json:"serving_size,omitempty"`
}

// Additive is a classified food additive. Code is always uppercase and
// starts with "E".
type Additive struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Function    string    `json:"function"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Explanation string    `json:"explanation"`
}

// FoodAlternative is a healthier replacement suggestion for a scanned
// product. Its HealthScore is always strictly greater than the score of
// the product it was suggested for.
type FoodAlternative struct {
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	HealthScore int    `json:"health_score"`
	Barcode     string `json:"barcode"`
	ImageURL    string `json:"image_url,omitempty"`
	Reason      string `json:"reason"`
}

// ScannedFoodRecord is the final output of the barcode path: a product
// with its nutrients, score, additive classification and healthier
// alternatives.
type ScannedFoodRecord struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Brand        string            `json:"brand,omitempty"`
	Nutrients    NutrientRecord    `json:"nutrients"`
	HealthScore  int               `json:"health_score"`
	HealthGrade  string            `json:"health_grade,omitempty"`
	NovaGroup    int               `json:"nova_group,omitempty"`
	Additives    []Additive        `json:"additives"`
	Alternatives []FoodAlternative `json:"alternatives"`
	EcoScore     string            `json:"eco_score,omitempty"`
}

// LabelOcrDraft is the output of the OCR path: individually extracted
// nutrition fields plus a confidence score. Fields the extractor could
// not recognize are nil, which is distinct from an extracted zero.
// A draft is created once per OCR attempt and never mutated.
type LabelOcrDraft struct {
	SessionID     string  `json:"session_id"`
	ProductName   *string `json:"product_name,omitempty"`
	ServingText   *string `json:"serving_text,omitempty"`
	Calories      *int    `json:"calories,omitempty"`
	ProteinGrams  *int    `json:"protein_grams,omitempty"`
	CarbsGrams    *int    `json:"carbs_grams,omitempty"`
	FatGrams      *int    `json:"fat_grams,omitempty"`
	SugarGrams    *int    `json:"sugar_grams,omitempty"`
	FiberGrams    *int    `json:"fiber_grams,omitempty"`
	SodiumMg      *int    `json:"sodium_mg,omitempty"`
	Confidence    float64 `json:"confidence"`
	ExtractedText string  `json:"extracted_text"`
}

// ClampScore clamps a running health score into the valid [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClampNovaGroup clamps a known NOVA processing group into [1,4].
// A zero (unknown) value is passed through so callers can tell
// "unclassified" apart from "unprocessed".
func ClampNovaGroup(group int) int {
	if group == 0 {
		return 0
	}
	if group < 1 {
		return 1
	}
	if group > 4 {
		return 4
	}
	return group
}
