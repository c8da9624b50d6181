package service

import (
	"testing"

	"washfinder/internal/model"
)

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }
func stringPtr(v string) *string    { return &v }

var testBrands = []string{"AEG", "Bosch", "LG", "Miele", "Samsung"}

func TestEnrichFilterPrice(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMin *float64
		wantMax *float64
	}{
		{name: "Under keyword", text: "something under 600 please", wantMax: float64Ptr(600)},
		{name: "Budget keyword", text: "my budget is 550", wantMax: float64Ptr(550)},
		{name: "Currency sign", text: "around 700€ would work", wantMax: float64Ptr(700)},
		{name: "At least keyword", text: "at least 400 for quality", wantMin: float64Ptr(400)},
		{name: "Explicit range", text: "between 400 - 600 please", wantMin: float64Ptr(400), wantMax: float64Ptr(600)},
		{name: "Range with to", text: "400 to 600 euro", wantMin: float64Ptr(400), wantMax: float64Ptr(600)},
		{name: "Range given high first", text: "price 600 - 400", wantMin: float64Ptr(400), wantMax: float64Ptr(600)},
		{name: "European thousands", text: "under 1.200 euro", wantMax: float64Ptr(1200)},
		{name: "Comma decimal", text: "max 599,99", wantMax: float64Ptr(599.99)},
		{name: "Small numbers ignored", text: "under 8", wantMin: nil, wantMax: nil},
		{name: "Bare number no signal", text: "I saw 600 somewhere", wantMin: nil, wantMax: nil},
		{name: "Dimension range not price", text: "55-60cm wide", wantMin: nil, wantMax: nil},
		{name: "Dimension words block range", text: "width between 55 and 60, size matters", wantMin: nil, wantMax: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnrichFilter(&model.QueryFilter{}, tt.text, testBrands)
			if !equalFloatPtr(got.MinPrice, tt.wantMin) {
				t.Errorf("MinPrice = %v, want %v", fmtFloatPtr(got.MinPrice), fmtFloatPtr(tt.wantMin))
			}
			if !equalFloatPtr(got.MaxPrice, tt.wantMax) {
				t.Errorf("MaxPrice = %v, want %v", fmtFloatPtr(got.MaxPrice), fmtFloatPtr(tt.wantMax))
			}
		})
	}
}

func TestEnrichFilterCapacity(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantMin *int
		wantMax *int
	}{
		{name: "Single capacity", text: "8kg please", wantMin: intPtr(8), wantMax: intPtr(8)},
		{name: "Capacity with space", text: "a 9 kg drum", wantMin: intPtr(9), wantMax: intPtr(9)},
		{name: "Capacity range", text: "7-9kg would suit us", wantMin: intPtr(7), wantMax: intPtr(9)},
		{name: "Capacity range with to", text: "7 to 9 kg", wantMin: intPtr(7), wantMax: intPtr(9)},
		{name: "No capacity", text: "under 600 euro", wantMin: nil, wantMax: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnrichFilter(&model.QueryFilter{}, tt.text, testBrands)
			if !equalIntPtr(got.MinCapacityKg, tt.wantMin) {
				t.Errorf("MinCapacityKg = %v, want %v", got.MinCapacityKg, tt.wantMin)
			}
			if !equalIntPtr(got.MaxCapacityKg, tt.wantMax) {
				t.Errorf("MaxCapacityKg = %v, want %v", got.MaxCapacityKg, tt.wantMax)
			}
		})
	}
}

func TestEnrichFilterDimensions(t *testing.T) {
	got := EnrichFilter(&model.QueryFilter{}, "needs to fit 60x85x55 under the counter", testBrands)
	if got.WidthCm == nil || *got.WidthCm != 60 {
		t.Errorf("WidthCm = %v, want 60", fmtFloatPtr(got.WidthCm))
	}
	if got.HeightCm == nil || *got.HeightCm != 85 {
		t.Errorf("HeightCm = %v, want 85", fmtFloatPtr(got.HeightCm))
	}
	if got.DepthCm == nil || *got.DepthCm != 55 {
		t.Errorf("DepthCm = %v, want 55", fmtFloatPtr(got.DepthCm))
	}
	// The dimension digits must not be mistaken for prices
	if got.MinPrice != nil || got.MaxPrice != nil {
		t.Errorf("price fields set from dimension digits: min=%v max=%v",
			fmtFloatPtr(got.MinPrice), fmtFloatPtr(got.MaxPrice))
	}
}

func TestEnrichFilterDimensionsUnicodeTimes(t *testing.T) {
	got := EnrichFilter(&model.QueryFilter{}, "60 × 85 × 55 cm niche", testBrands)
	if got.WidthCm == nil || got.HeightCm == nil || got.DepthCm == nil {
		t.Fatalf("dimensions not extracted: %+v", got)
	}
}

func TestEnrichFilterType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *string
	}{
		{name: "Front load", text: "a front load machine", want: stringPtr("front")},
		{name: "Front loader word", text: "frontloader preferred", want: stringPtr("front")},
		{name: "Top load", text: "top load only", want: stringPtr("top")},
		{name: "Top loader German", text: "ein toplader bitte", want: stringPtr("top")},
		{name: "Bare top token", text: "top please", want: stringPtr("top")},
		{name: "Laptop not a type", text: "ordered from my laptop", want: nil},
		{name: "Both types mentioned", text: "not sure if top load or front load is better", want: nil},
		{name: "No type", text: "under 600", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnrichFilter(&model.QueryFilter{}, tt.text, testBrands)
			if !equalStringPtr(got.Type, tt.want) {
				t.Errorf("Type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestEnrichFilterBrand(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantBrand    *string
		wantFlexible bool
	}{
		{name: "Brand mention", text: "a Bosch would be nice", wantBrand: stringPtr("Bosch")},
		{name: "Brand case insensitive", text: "maybe miele", wantBrand: stringPtr("Miele")},
		{name: "Relax phrase", text: "any brand is fine", wantFlexible: true},
		{name: "Relax phrase Chinese", text: "品牌不限", wantFlexible: true},
		{name: "Excluded brand", text: "anything other than bosch", wantBrand: nil, wantFlexible: true},
		{name: "No brand", text: "8kg under 600", wantBrand: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EnrichFilter(&model.QueryFilter{}, tt.text, testBrands)
			if !equalStringPtr(got.Brand, tt.wantBrand) {
				t.Errorf("Brand = %v, want %v", got.Brand, tt.wantBrand)
			}
			if got.BrandFlexible != tt.wantFlexible {
				t.Errorf("BrandFlexible = %v, want %v", got.BrandFlexible, tt.wantFlexible)
			}
		})
	}
}

func TestEnrichFilterBrandExclusionClearsPreset(t *testing.T) {
	draft := &model.QueryFilter{Brand: stringPtr("Bosch")}
	got := EnrichFilter(draft, "not bosch please", testBrands)
	if got.Brand != nil {
		t.Errorf("Brand = %v, want cleared", *got.Brand)
	}
	if !got.BrandFlexible {
		t.Error("BrandFlexible = false, want true after exclusion")
	}
}

func TestEnrichFilterPriceMaxTakenNumberNotMisreadAsMin(t *testing.T) {
	draft := &model.QueryFilter{MaxPrice: float64Ptr(800)}
	got := EnrichFilter(draft, "budget under 600, at least decent quality", testBrands)
	if got.MaxPrice == nil || *got.MaxPrice != 800 {
		t.Errorf("MaxPrice = %v, want 800 preserved", fmtFloatPtr(got.MaxPrice))
	}
	if got.MinPrice != nil {
		t.Errorf("MinPrice = %v, want nil", fmtFloatPtr(got.MinPrice))
	}
}

func TestEnrichFilterKeepsExistingValues(t *testing.T) {
	draft := &model.QueryFilter{
		Brand:    stringPtr("LG"),
		Type:     stringPtr("front"),
		MaxPrice: float64Ptr(800),
	}
	got := EnrichFilter(draft, "a bosch top load under 600", testBrands)
	if got.Brand == nil || *got.Brand != "LG" {
		t.Errorf("Brand = %v, want LG preserved", got.Brand)
	}
	if got.Type == nil || *got.Type != "front" {
		t.Errorf("Type = %v, want front preserved", got.Type)
	}
	if got.MaxPrice == nil || *got.MaxPrice != 800 {
		t.Errorf("MaxPrice = %v, want 800 preserved", fmtFloatPtr(got.MaxPrice))
	}
}

func TestEnrichFilterCombined(t *testing.T) {
	got := EnrichFilter(&model.QueryFilter{}, "a samsung front loader, 8kg, budget 650, fits 60x85x55", testBrands)
	if got.Brand == nil || *got.Brand != "Samsung" {
		t.Errorf("Brand = %v, want Samsung", got.Brand)
	}
	if got.Type == nil || *got.Type != "front" {
		t.Errorf("Type = %v, want front", got.Type)
	}
	if got.MinCapacityKg == nil || *got.MinCapacityKg != 8 {
		t.Errorf("MinCapacityKg = %v, want 8", got.MinCapacityKg)
	}
	if got.MaxPrice == nil || *got.MaxPrice != 650 {
		t.Errorf("MaxPrice = %v, want 650", fmtFloatPtr(got.MaxPrice))
	}
	if got.WidthCm == nil || *got.WidthCm != 60 {
		t.Errorf("WidthCm = %v, want 60", fmtFloatPtr(got.WidthCm))
	}
}

func equalFloatPtr(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtFloatPtr(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
