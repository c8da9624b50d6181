package model

import "fmt"

// QueryFilter represents the structured shopping constraints collected for a
// session. Nil means "not stated yet"; numeric sentinels are never used.
type QueryFilter struct {
	Brand         *string  `json:"brand,omitempty"`
	Type          *string  `json:"type,omitempty"` // "front" or "top"
	MinPrice      *float64 `json:"minPrice,omitempty"`
	MaxPrice      *float64 `json:"maxPrice,omitempty"`
	MinCapacityKg *int     `json:"minCapacityKg,omitempty"`
	MaxCapacityKg *int     `json:"maxCapacityKg,omitempty"`
	WidthCm       *float64 `json:"widthCm,omitempty"`
	HeightCm      *float64 `json:"heightCm,omitempty"`
	DepthCm       *float64 `json:"depthCm,omitempty"`
	// BrandFlexible is true when the user explicitly accepts any brand,
	// as opposed to never having stated a preference.
	BrandFlexible bool `json:"brandFlexible"`
}

// Clone returns an independent copy of the filter.
func (f *QueryFilter) Clone() *QueryFilter {
	if f == nil {
		return nil
	}
	copied := *f
	return &copied
}

// HasAnyValue reports whether at least one concrete constraint is set.
// BrandFlexible alone does not count: "any brand" narrows nothing.
func (f *QueryFilter) HasAnyValue() bool {
	if f == nil {
		return false
	}
	return f.Brand != nil || f.Type != nil ||
		f.MinPrice != nil || f.MaxPrice != nil ||
		f.MinCapacityKg != nil || f.MaxCapacityKg != nil ||
		f.WidthCm != nil || f.HeightCm != nil || f.DepthCm != nil
}

// HasDimensionConstraints reports whether any physical dimension is set.
func (f *QueryFilter) HasDimensionConstraints() bool {
	if f == nil {
		return false
	}
	return f.WidthCm != nil || f.HeightCm != nil || f.DepthCm != nil
}

// DescribeBudget renders the price constraint for humans, or "" if unset.
func (f *QueryFilter) DescribeBudget() string {
	if f == nil || (f.MinPrice == nil && f.MaxPrice == nil) {
		return ""
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		return fmt.Sprintf("€%d - €%d", int(*f.MinPrice), int(*f.MaxPrice))
	}
	if f.MaxPrice != nil {
		return fmt.Sprintf("≤ €%d", int(*f.MaxPrice))
	}
	return fmt.Sprintf("≥ €%d", int(*f.MinPrice))
}

// DescribeCapacity renders the capacity constraint for humans, or "" if unset.
func (f *QueryFilter) DescribeCapacity() string {
	if f == nil || (f.MinCapacityKg == nil && f.MaxCapacityKg == nil) {
		return ""
	}
	if f.MinCapacityKg != nil && f.MaxCapacityKg != nil {
		return fmt.Sprintf("%d-%dkg", *f.MinCapacityKg, *f.MaxCapacityKg)
	}
	if f.MaxCapacityKg != nil {
		return fmt.Sprintf("≤ %dkg", *f.MaxCapacityKg)
	}
	return fmt.Sprintf("≥ %dkg", *f.MinCapacityKg)
}

// DescribeDimensions renders the dimension constraint for humans, with "?"
// for axes still unknown, or "" if nothing is set.
func (f *QueryFilter) DescribeDimensions() string {
	if !f.HasDimensionConstraints() {
		return ""
	}
	return fmt.Sprintf("%s×%s×%s cm", dimToken(f.WidthCm), dimToken(f.HeightCm), dimToken(f.DepthCm))
}

// DescribeBrand renders the brand constraint for humans, or "" if unset.
func (f *QueryFilter) DescribeBrand() string {
	if f == nil {
		return ""
	}
	if f.BrandFlexible {
		return "Any brand"
	}
	if f.Brand == nil {
		return ""
	}
	return *f.Brand
}

func dimToken(v *float64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%.0f", *v)
}
