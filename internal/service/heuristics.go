package service

import (
	"regexp"
	"sort"
	"strings"

	"washfinder/internal/model"
	"washfinder/internal/utils"
)

// Regex patterns shared by the enrichment steps. Go's regexp package has no
// lookahead, so the price-range pattern captures a trailing unit instead and
// callers treat matches with a unit as non-price ranges.
var (
	dimensionRe     = regexp.MustCompile(`(\d{2,})\s*[x×]\s*(\d{2,})\s*[x×]\s*(\d{2,})`)
	capacityRangeRe = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:-|to)\s*(\d{1,2})\s*kg`)
	capacityRe      = regexp.MustCompile(`(?i)(\d{1,2})\s*kg`)
	numberRe        = regexp.MustCompile(`\d+[\d,.]*`)
	priceRangeRe    = regexp.MustCompile(`(?i)(\d{2,})\s*(?:-|to)\s*(\d{2,})\s*(cm|mm|kg|litre|liter)?`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

var maxPriceHints = []string{
	"under", "below", "less", "less than", "max", "budget", "plafond",
	"moins de", "inferieur", "inferior", "jusqu a", "up to",
	"within budget", "cap", "upper limit",
}

var minPriceHints = []string{
	"over", "above", "at least", "minimum", "plus de", "au moins",
	"superieur", "superior", "minimum spend", "floor", "starting from",
}

var topLoadHints = []string{
	"top load", "top-load", "toploader", "toplader", "top",
	"vertical load", "upright washer",
}

var frontLoadHints = []string{
	"front load", "front-load", "frontloader", "front", "hublot",
	"horizontal drum", "side door",
}

var brandRelaxPhrases = []string{
	"any brand", "any other brand", "other brand", "different brand",
	"open on brand", "brand doesn't matter", "brand does not matter",
	"brand isn't important", "no brand preference", "another brand",
	"any brands", "brand flexible", "brand free",
	"任何品牌", "别的品牌", "其他品牌", "还有别的品牌", "还有其他品牌",
	"品牌不限", "品牌无所谓", "没有品牌偏好", "换个品牌", "别的牌子", "其他牌子",
}

var brandExclusionPrefixes = []string{
	"other than ", "not ", "besides ", "except ", "outside ", "apart from ",
}

// Words in €50 and above are treated as plausible prices; smaller numbers are
// almost always capacities or counts.
const minPlausiblePrice = 50

// EnrichFilter layers deterministic heuristics over a filter draft: brand
// mentions and relaxation, load type hints, dimension triples, capacity,
// and price signals from the user's raw text. Fields already set on the
// draft are never overwritten.
func EnrichFilter(filter *model.QueryFilter, userText string, brands []string) *model.QueryFilter {
	if filter == nil {
		filter = &model.QueryFilter{}
	}
	lower := strings.ToLower(userText)

	enrichBrand(filter, lower, brands)
	enrichType(filter, lower)
	stripped := enrichDimensions(filter, lower)
	enrichCapacity(filter, stripped)
	enrichPrice(filter, userText, stripped)

	return filter
}

func enrichBrand(filter *model.QueryFilter, lower string, brands []string) {
	for _, phrase := range brandRelaxPhrases {
		if strings.Contains(lower, phrase) {
			filter.BrandFlexible = true
			filter.Brand = nil
			return
		}
	}
	if filter.Brand == nil {
		for _, brand := range brands {
			brandLower := strings.ToLower(strings.TrimSpace(brand))
			if brandLower == "" || !strings.Contains(lower, brandLower) {
				continue
			}
			if brandIsExcluded(lower, brandLower) {
				// "anything but Bosch" means the brand itself is off the table
				filter.BrandFlexible = true
				continue
			}
			b := brand
			filter.Brand = &b
			break
		}
	}
	// Excluding the brand that is already on the filter reopens the slot
	if filter.Brand != nil && brandIsExcluded(lower, strings.ToLower(*filter.Brand)) {
		filter.Brand = nil
		filter.BrandFlexible = true
	}
}

func brandIsExcluded(lower, brandLower string) bool {
	for _, prefix := range brandExclusionPrefixes {
		if strings.Contains(lower, prefix+brandLower) {
			return true
		}
	}
	return false
}

func enrichType(filter *model.QueryFilter, lower string) {
	if filter.Type != nil {
		return
	}
	normalized := normalizeText(lower)
	front := containsAnyNormalized(normalized, frontLoadHints)
	top := containsAnyNormalized(normalized, topLoadHints)
	// Both kinds of hints in one utterance is a comparison, not a choice
	if front == top {
		return
	}
	t := "top"
	if front {
		t = "front"
	}
	filter.Type = &t
}

// enrichDimensions fills unset dimension fields from WxHxD triples and
// returns the text with those triples blanked out, so the digits do not
// leak into price detection.
func enrichDimensions(filter *model.QueryFilter, lower string) string {
	matches := dimensionRe.FindAllStringSubmatch(lower, -1)
	if len(matches) == 0 {
		return lower
	}
	for _, m := range matches {
		w, okW := utils.ParseLocaleNumber(m[1])
		h, okH := utils.ParseLocaleNumber(m[2])
		d, okD := utils.ParseLocaleNumber(m[3])
		if !okW || !okH || !okD {
			continue
		}
		if filter.WidthCm == nil {
			filter.WidthCm = &w
		}
		if filter.HeightCm == nil {
			filter.HeightCm = &h
		}
		if filter.DepthCm == nil {
			filter.DepthCm = &d
		}
	}
	return dimensionRe.ReplaceAllString(lower, " ")
}

func enrichCapacity(filter *model.QueryFilter, text string) {
	if m := capacityRangeRe.FindStringSubmatch(text); m != nil {
		lo, okLo := utils.ParseLocaleNumber(m[1])
		hi, okHi := utils.ParseLocaleNumber(m[2])
		if okLo && okHi {
			if lo > hi {
				lo, hi = hi, lo
			}
			loInt, hiInt := int(lo), int(hi)
			if filter.MinCapacityKg == nil {
				filter.MinCapacityKg = &loInt
			}
			if filter.MaxCapacityKg == nil {
				filter.MaxCapacityKg = &hiInt
			}
		}
		return
	}
	if m := capacityRe.FindStringSubmatch(text); m != nil {
		v, ok := utils.ParseLocaleNumber(m[1])
		if !ok {
			return
		}
		vInt := int(v)
		if filter.MinCapacityKg == nil {
			filter.MinCapacityKg = &vInt
		}
		if filter.MaxCapacityKg == nil {
			filter.MaxCapacityKg = &vInt
		}
	}
}

func enrichPrice(filter *model.QueryFilter, rawText, strippedText string) {
	normalized := normalizeText(strippedText)
	padded := " " + normalized + " "

	maxHint := containsAnyNormalized(normalized, maxPriceHints)
	minHint := containsAnyNormalized(normalized, minPriceHints)
	hasPriceWord := strings.Contains(padded, " price ") || strings.Contains(padded, " cost ")
	hasBudgetWord := strings.Contains(normalized, " budget ")
	currency := strings.Contains(rawText, "€") ||
		containsAnyNormalized(normalized, []string{"eur", "euro", "euros"})
	dimensionWords := containsAnyNormalized(normalized,
		[]string{"width", "height", "depth", "dimension", "size"})

	var nums []float64
	for _, token := range numberRe.FindAllString(strippedText, -1) {
		v, ok := utils.ParseLocaleNumber(token)
		if !ok || v < minPlausiblePrice {
			continue
		}
		nums = append(nums, v)
	}
	if len(nums) == 0 {
		return
	}

	priceSignal := maxHint || minHint || hasPriceWord || hasBudgetWord || currency
	rangeSignal := false
	for _, m := range priceRangeRe.FindAllStringSubmatch(strippedText, -1) {
		if m[3] == "" {
			rangeSignal = true
			break
		}
	}

	if len(nums) >= 2 && !dimensionWords && (priceSignal || rangeSignal) {
		sort.Float64s(nums)
		if filter.MinPrice == nil {
			lo := nums[0]
			filter.MinPrice = &lo
		}
		if filter.MaxPrice == nil {
			hi := nums[len(nums)-1]
			filter.MaxPrice = &hi
		}
		return
	}

	v := nums[0]
	qualifiesMax := maxHint || hasBudgetWord || currency ||
		strings.Contains(strippedText, "≤") || strings.Contains(strippedText, "<=")
	qualifiesMin := minHint ||
		strings.Contains(strippedText, "≥") || strings.Contains(strippedText, ">=")

	// A max-qualified number never doubles as a minimum, even when the
	// max slot is already taken
	if qualifiesMax {
		if filter.MaxPrice == nil {
			filter.MaxPrice = &v
		}
	} else if qualifiesMin && filter.MinPrice == nil {
		filter.MinPrice = &v
	}
}

// normalizeText lowercases and collapses every non-alphanumeric run into a
// single space, so phrase checks are insensitive to punctuation.
func normalizeText(text string) string {
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(strings.ToLower(text), " "))
}

// containsAnyNormalized reports whether any hint appears as a whole
// token sequence in the normalized text.
func containsAnyNormalized(normalized string, hints []string) bool {
	padded := " " + normalized + " "
	for _, hint := range hints {
		h := normalizeText(hint)
		if h == "" {
			continue
		}
		if strings.Contains(padded, " "+h+" ") {
			return true
		}
	}
	return false
}
