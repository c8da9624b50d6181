package service

import (
	"fmt"
	"math"
	"strings"

	"washfinder/internal/model"
)

// AxisStatus classifies how a product relates to one filter axis
type AxisStatus int

const (
	// StatusUnknown means the axis is unconstrained or the product lacks data
	StatusUnknown AxisStatus = iota
	StatusSatisfied
	StatusViolated
)

func (s AxisStatus) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusViolated:
		return "violated"
	default:
		return "unknown"
	}
}

// AxisReport is the verdict for one filter axis
type AxisReport struct {
	Status      AxisStatus
	Constrained bool    // the filter actually asked for something on this axis
	Delta       float64 // numeric gap when violated, in the axis unit
	Detail      string
}

// MatchReport is the full constraint evaluation of one product. It is the
// single source of truth for result badges and for the narration handed to
// the answer writer.
type MatchReport struct {
	Budget     AxisReport
	Capacity   AxisReport
	Type       AxisReport
	Brand      AxisReport
	Dimensions AxisReport
}

// EvaluateProduct checks product against every axis of filter. Dimension
// closeness uses toleranceCm per axis.
func EvaluateProduct(filter *model.QueryFilter, product *model.Product, toleranceCm float64) MatchReport {
	if filter == nil {
		filter = &model.QueryFilter{}
	}
	return MatchReport{
		Budget:     evaluateBudget(filter, product),
		Capacity:   evaluateCapacity(filter, product),
		Type:       evaluateType(filter, product),
		Brand:      evaluateBrand(filter, product),
		Dimensions: evaluateDimensions(filter, product, toleranceCm),
	}
}

func evaluateBudget(filter *model.QueryFilter, product *model.Product) AxisReport {
	if filter.MinPrice == nil && filter.MaxPrice == nil {
		return AxisReport{}
	}
	r := AxisReport{Constrained: true}
	if product.Price == nil {
		r.Detail = "price unknown"
		return r
	}
	price := *product.Price
	if filter.MaxPrice != nil && price > *filter.MaxPrice {
		r.Status = StatusViolated
		r.Delta = price - *filter.MaxPrice
		r.Detail = fmt.Sprintf("€%.0f over the budget of €%.0f", r.Delta, *filter.MaxPrice)
		return r
	}
	if filter.MinPrice != nil && price < *filter.MinPrice {
		r.Status = StatusViolated
		r.Delta = *filter.MinPrice - price
		r.Detail = fmt.Sprintf("€%.0f below the minimum of €%.0f", r.Delta, *filter.MinPrice)
		return r
	}
	r.Status = StatusSatisfied
	r.Detail = fmt.Sprintf("€%.0f fits the budget", price)
	return r
}

func evaluateCapacity(filter *model.QueryFilter, product *model.Product) AxisReport {
	if filter.MinCapacityKg == nil && filter.MaxCapacityKg == nil {
		return AxisReport{}
	}
	r := AxisReport{Constrained: true}
	if product.CapacityKg == nil {
		r.Detail = "capacity unknown"
		return r
	}
	capacity := *product.CapacityKg
	if filter.MinCapacityKg != nil && capacity < *filter.MinCapacityKg {
		r.Status = StatusViolated
		r.Delta = float64(*filter.MinCapacityKg - capacity)
		r.Detail = fmt.Sprintf("%dkg is %.0fkg below the requested minimum", capacity, r.Delta)
		return r
	}
	if filter.MaxCapacityKg != nil && capacity > *filter.MaxCapacityKg {
		r.Status = StatusViolated
		r.Delta = float64(capacity - *filter.MaxCapacityKg)
		r.Detail = fmt.Sprintf("%dkg is %.0fkg above the requested maximum", capacity, r.Delta)
		return r
	}
	r.Status = StatusSatisfied
	r.Detail = fmt.Sprintf("%dkg capacity as requested", capacity)
	return r
}

func evaluateType(filter *model.QueryFilter, product *model.Product) AxisReport {
	if filter.Type == nil {
		return AxisReport{}
	}
	r := AxisReport{Constrained: true}
	if product.Type == nil {
		r.Detail = "load type unknown"
		return r
	}
	if strings.EqualFold(*filter.Type, *product.Type) {
		r.Status = StatusSatisfied
		r.Detail = fmt.Sprintf("%s load as requested", strings.ToLower(*product.Type))
		return r
	}
	r.Status = StatusViolated
	r.Detail = fmt.Sprintf("%s load instead of %s load",
		strings.ToLower(*product.Type), strings.ToLower(*filter.Type))
	return r
}

func evaluateBrand(filter *model.QueryFilter, product *model.Product) AxisReport {
	if filter.Brand == nil {
		if filter.BrandFlexible {
			return AxisReport{Status: StatusSatisfied, Detail: "any brand accepted"}
		}
		return AxisReport{}
	}
	r := AxisReport{Constrained: true}
	if product.Brand == nil {
		r.Detail = "brand unknown"
		return r
	}
	if strings.EqualFold(*filter.Brand, *product.Brand) {
		r.Status = StatusSatisfied
		r.Detail = fmt.Sprintf("%s as requested", *product.Brand)
		return r
	}
	r.Status = StatusViolated
	r.Detail = fmt.Sprintf("%s instead of %s", *product.Brand, *filter.Brand)
	return r
}

func evaluateDimensions(filter *model.QueryFilter, product *model.Product, toleranceCm float64) AxisReport {
	axes := []struct {
		name string
		want *float64
		have *float64
	}{
		{"width", filter.WidthCm, product.WidthCm},
		{"height", filter.HeightCm, product.HeightCm},
		{"depth", filter.DepthCm, product.DepthCm},
	}

	constrained := false
	missing := false
	worst := 0.0
	var violations []string
	for _, axis := range axes {
		if axis.want == nil {
			continue
		}
		constrained = true
		if axis.have == nil {
			missing = true
			continue
		}
		gap := math.Abs(*axis.have - *axis.want)
		if gap > toleranceCm {
			if gap > worst {
				worst = gap
			}
			violations = append(violations, fmt.Sprintf("%.1fcm off on %s", gap, axis.name))
		}
	}

	if !constrained {
		return AxisReport{}
	}
	r := AxisReport{Constrained: true}
	if len(violations) > 0 {
		r.Status = StatusViolated
		r.Delta = worst
		r.Detail = strings.Join(violations, ", ")
		return r
	}
	if missing {
		r.Detail = "some dimensions unknown"
		return r
	}
	r.Status = StatusSatisfied
	r.Detail = "fits the requested space"
	return r
}

// Badges returns the UI badges earned by this report. A badge requires the
// filter to have constrained the axis and the product to satisfy it.
func (m MatchReport) Badges() []string {
	var badges []string
	if m.Budget.Constrained && m.Budget.Status == StatusSatisfied {
		badges = append(badges, "Within budget")
	}
	if m.Capacity.Constrained && m.Capacity.Status == StatusSatisfied {
		badges = append(badges, "Capacity match")
	}
	if m.Type.Constrained && m.Type.Status == StatusSatisfied {
		badges = append(badges, "Type match")
	}
	if m.Dimensions.Constrained && m.Dimensions.Status == StatusSatisfied {
		badges = append(badges, "Dimension fit")
	}
	if m.Brand.Constrained && m.Brand.Status == StatusSatisfied {
		badges = append(badges, "Brand match")
	}
	return badges
}

// Narration returns human-readable lines about how the product relates to
// the filter, violations first. Used to ground the generated explanation.
func (m MatchReport) Narration() []string {
	axes := []struct {
		label  string
		report AxisReport
	}{
		{"budget", m.Budget},
		{"capacity", m.Capacity},
		{"type", m.Type},
		{"brand", m.Brand},
		{"dimensions", m.Dimensions},
	}

	var violated, satisfied []string
	for _, axis := range axes {
		if axis.report.Detail == "" {
			continue
		}
		line := fmt.Sprintf("%s: %s", axis.label, axis.report.Detail)
		if axis.report.Status == StatusViolated {
			violated = append(violated, line)
		} else {
			satisfied = append(satisfied, line)
		}
	}
	return append(violated, satisfied...)
}
