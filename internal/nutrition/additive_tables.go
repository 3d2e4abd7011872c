package nutrition

// Curated additive knowledge. Deliberately a small subset of the E
// number space: codes outside these tables classify as SAFE with
// generic function/explanation text, never an error. Kept separate
// from the scoring arithmetic so the tables can grow without touching
// the engine.

// additiveAvoidSet lists codes with the strongest caution signals,
// mostly azo colorants and nitrite curing salts.
var additiveAvoidSet = map[string]bool{
	"E102": true, // tartrazine
	"E104": true, // quinoline yellow
	"E110": true, // sunset yellow
	"E122": true, // azorubine
	"E124": true, // ponceau 4R
	"E129": true, // allura red
	"E171": true, // titanium dioxide
	"E250": true, // sodium nitrite
	"E251": true, // sodium nitrate
}

// additiveLimitedSet lists preservatives, flavor enhancers and certain
// sweeteners and colorings worth limiting.
var additiveLimitedSet = map[string]bool{
	"E150D": true, // caramel color (sulfite ammonia)
	"E202":  true, // potassium sorbate
	"E211":  true, // sodium benzoate
	"E220":  true, // sulfur dioxide
	"E320":  true, // BHA
	"E321":  true, // BHT
	"E621":  true, // monosodium glutamate
	"E627":  true, // disodium guanylate
	"E631":  true, // disodium inosinate
	"E950":  true, // acesulfame K
	"E951":  true, // aspartame
	"E955":  true, // sucralose
}

// additiveFunctions maps codes to their technological function
var additiveFunctions = map[string]string{
	"E102":  "Colorant",
	"E104":  "Colorant",
	"E110":  "Colorant",
	"E122":  "Colorant",
	"E124":  "Colorant",
	"E129":  "Colorant",
	"E150D": "Colorant",
	"E171":  "Colorant",
	"E202":  "Preservative",
	"E211":  "Preservative",
	"E220":  "Preservative",
	"E250":  "Preservative",
	"E251":  "Preservative",
	"E300":  "Antioxidant",
	"E320":  "Antioxidant",
	"E321":  "Antioxidant",
	"E322":  "Emulsifier",
	"E330":  "Acidity regulator",
	"E407":  "Thickener",
	"E412":  "Thickener",
	"E415":  "Thickener",
	"E440":  "Gelling agent",
	"E471":  "Emulsifier",
	"E476":  "Emulsifier",
	"E621":  "Flavor enhancer",
	"E627":  "Flavor enhancer",
	"E631":  "Flavor enhancer",
	"E950":  "Sweetener",
	"E951":  "Sweetener",
	"E955":  "Sweetener",
}

// additiveExplanations maps codes to a short consumer-facing note
var additiveExplanations = map[string]string{
	"E102":  "Azo dye linked to hyperactivity in children in some studies",
	"E104":  "Synthetic dye restricted in several countries",
	"E110":  "Azo dye that may cause reactions in sensitive people",
	"E122":  "Azo dye linked to hyperactivity in children in some studies",
	"E124":  "Azo dye restricted in several countries",
	"E129":  "Azo dye linked to hyperactivity in children in some studies",
	"E150D": "Caramel coloring produced with sulfite and ammonia compounds",
	"E171":  "Whitening agent no longer authorized in EU foods",
	"E202":  "Common preservative, generally well tolerated in small amounts",
	"E211":  "Preservative that can form benzene with vitamin C",
	"E220":  "Preservative that can trigger asthma and sulfite sensitivity",
	"E250":  "Curing salt that can form nitrosamines at high heat",
	"E251":  "Curing salt converted to nitrite in the body",
	"E300":  "Vitamin C used as an antioxidant",
	"E320":  "Synthetic antioxidant under ongoing safety review",
	"E321":  "Synthetic antioxidant under ongoing safety review",
	"E322":  "Usually derived from soy or sunflower, well tolerated",
	"E330":  "Citric acid, widely used and well tolerated",
	"E621":  "Flavor enhancer some people prefer to limit",
	"E627":  "Flavor enhancer often paired with MSG",
	"E631":  "Flavor enhancer often paired with MSG",
	"E950":  "Artificial sweetener, acceptable intake limits apply",
	"E951":  "Artificial sweetener, acceptable intake limits apply",
	"E955":  "Artificial sweetener, acceptable intake limits apply",
}

// Generic fallbacks for codes outside the curated tables
const (
	genericAdditiveFunction    = "Food additive"
	genericAdditiveExplanation = "Limited research available"
)
