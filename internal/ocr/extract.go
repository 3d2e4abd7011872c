package ocr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Derivation constants for fields that only appear indirectly on labels.
const (
	kjPerKcal        = 4.184 // energy unit conversion
	sodiumMgPerSaltG = 393   // sodium is ~39.3% of salt by mass
)

// fieldPattern is one candidate regex for a field. Patterns are tried
// strictly in slice order; the first one that matches and parses wins,
// so priority never depends on map iteration order.
type fieldPattern struct {
	tag string
	re  *regexp.Regexp
}

var (
	caloriePatterns = []fieldPattern{
		{"calories-label", regexp.MustCompile(`(?i)\bcalories?\b[^0-9\n]*(\d{2,4})\b`)},
		{"calories-suffix", regexp.MustCompile(`(?i)\b(\d{2,4})\s*(?:kcal|cal|calories?)\b`)},
		{"energy-kcal", regexp.MustCompile(`(?i)\benergy\b[^\n]*?(\d{2,4})\s*kcal\b`)},
	}

	kilojoulePatterns = []fieldPattern{
		{"energy-kj", regexp.MustCompile(`(?i)\benergy\b[^\n]*?(\d{3,5})\s*kj\b`)},
		{"kj-suffix", regexp.MustCompile(`(?i)\b(\d{3,5})\s*kj\b`)},
	}

	proteinPatterns = gramPatterns("protein", `proteins?`, `protem`)
	carbPatterns    = gramPatterns("carbs", `carbohydrates?`, `carbs?`)
	fatPatterns     = gramPatterns("fat", `(?:total\s+)?fat`, `lipids`)
	sugarPatterns   = gramPatterns("sugar", `sugars?`)
	fiberPatterns   = gramPatterns("fiber", `(?:dietary\s+)?fib(?:er|re)s?`)

	sodiumPatterns = []fieldPattern{
		{"sodium-mg", regexp.MustCompile(`(?i)\bsodium\b[^0-9\n]*(\d+(?:[.,]\d+)?)\s*mg\b`)},
	}
	saltPatterns = []fieldPattern{
		{"salt-g", regexp.MustCompile(`(?i)\bsalt\b[^0-9\n]*(\d+(?:[.,]\d+)?)\s*g\b`)},
	}

	servingPatterns = []fieldPattern{
		{"serving-size", regexp.MustCompile(`(?i)serving\s+size\s*:\s*([^\n]+)`)},
		{"per-serving", regexp.MustCompile(`(?i)per\s+serving\s*:\s*([^\n]+)`)},
	}

	// A line made only of digits, units and punctuation is never a
	// product name.
	unitNoiseLine = regexp.MustCompile(`^[0-9\s%.,mgkcalg/:-]+$`)

	nameStopWords = []string{"nutrition", "facts", "serving", "ingredients"}
)

// gramPatterns builds the ordered candidate list for a grams-suffixed
// nutrient. Each spelling becomes its own tagged pattern so OCR
// misreads ("protem") rank after the canonical spelling.
func gramPatterns(field string, spellings ...string) []fieldPattern {
	patterns := make([]fieldPattern, 0, len(spellings))
	for i, spelling := range spellings {
		tag := field
		if i > 0 {
			tag = field + "-alt" + strconv.Itoa(i)
		}
		patterns = append(patterns, fieldPattern{
			tag: tag,
			re:  regexp.MustCompile(`(?i)\b` + spelling + `\b[^0-9\n]*(\d+(?:[.,]\d+)?)\s*g\b`),
		})
	}
	return patterns
}

// Normalize canonicalizes raw OCR text: CRLF to LF, non-breaking
// spaces to plain spaces.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\u00a0", " ")
}

// FieldExtractor extracts individual nutrition fields from normalized
// OCR text using ordered candidate patterns.
type FieldExtractor struct {
	text string
}

// NewFieldExtractor normalizes the raw text and wraps it for extraction
func NewFieldExtractor(raw string) *FieldExtractor {
	return &FieldExtractor{text: Normalize(raw)}
}

// Text returns the normalized text the extractor operates on
func (e *FieldExtractor) Text() string {
	return e.text
}

// extractFloat tries each pattern in order and returns the first
// successfully parsed capture. Commas are accepted as locale decimal
// separators. Returns nil when no pattern yields a parseable value.
func (e *FieldExtractor) extractFloat(patterns []fieldPattern) *float64 {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(e.text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", ".")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return &value
	}
	return nil
}

// extractInt is extractFloat truncated to int
func (e *FieldExtractor) extractInt(patterns []fieldPattern) *int {
	value := e.extractFloat(patterns)
	if value == nil {
		return nil
	}
	truncated := int(*value)
	return &truncated
}

// Calories extracts kcal, falling back to a kJ reading converted with
// kcal = round(kJ / 4.184).
func (e *FieldExtractor) Calories() *int {
	if kcal := e.extractInt(caloriePatterns); kcal != nil {
		return kcal
	}
	if kj := e.extractFloat(kilojoulePatterns); kj != nil {
		kcal := int(math.Round(*kj / kjPerKcal))
		return &kcal
	}
	return nil
}

// ProteinGrams extracts protein in grams
func (e *FieldExtractor) ProteinGrams() *int {
	return e.extractInt(proteinPatterns)
}

// CarbsGrams extracts carbohydrates in grams
func (e *FieldExtractor) CarbsGrams() *int {
	return e.extractInt(carbPatterns)
}

// FatGrams extracts fat in grams
func (e *FieldExtractor) FatGrams() *int {
	return e.extractInt(fatPatterns)
}

// SugarGrams extracts sugars in grams
func (e *FieldExtractor) SugarGrams() *int {
	return e.extractInt(sugarPatterns)
}

// FiberGrams extracts fiber in grams
func (e *FieldExtractor) FiberGrams() *int {
	return e.extractInt(fiberPatterns)
}

// SodiumMg extracts sodium in milligrams, deriving it from a salt
// reading (sodium_mg = round(salt_g * 393)) when no direct sodium line
// is present.
func (e *FieldExtractor) SodiumMg() *int {
	if sodium := e.extractFloat(sodiumPatterns); sodium != nil {
		mg := int(math.Round(*sodium))
		return &mg
	}
	if salt := e.extractFloat(saltPatterns); salt != nil {
		mg := int(math.Round(*salt * sodiumMgPerSaltG))
		return &mg
	}
	return nil
}

// ServingText extracts the serving descriptor, trimmed and truncated to
// 36 characters. The first non-blank match wins.
func (e *FieldExtractor) ServingText() *string {
	for _, p := range servingPatterns {
		m := p.re.FindStringSubmatch(e.text)
		if m == nil {
			continue
		}
		serving := strings.TrimSpace(m[1])
		if serving == "" {
			continue
		}
		serving = truncate(serving, 36)
		return &serving
	}
	return nil
}

// ProductName scans lines in order and returns the first plausible
// product name: 3-52 characters, no label boilerplate words, and not a
// line of digits/units/punctuation. Returns nil when no line qualifies.
func (e *FieldExtractor) ProductName() *string {
	for _, line := range strings.Split(e.text, "\n") {
		candidate := strings.TrimSpace(line)
		length := len([]rune(candidate))
		if length < 3 || length > 52 {
			continue
		}
		if containsStopWord(candidate) {
			continue
		}
		if unitNoiseLine.MatchString(candidate) {
			continue
		}
		return &candidate
	}
	return nil
}

func containsStopWord(line string) bool {
	lower := strings.ToLower(line)
	for _, word := range nameStopWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
