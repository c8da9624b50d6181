package service

import (
	"context"

	"washfinder/internal/model"
)

// Slot refinement thresholds: a budget window wider than this stays rough,
// a capacity window wider than 1kg stays rough.
const (
	budgetRefinedSpan   = 200.0
	capacityRefinedSpan = 1
)

// mergeFilters layers the freshly extracted filter over the session
// baseline. Incoming values win; explicit brand relaxation clears the
// baseline brand; implausible prices are discarded.
func mergeFilters(baseline, incoming *model.QueryFilter) *model.QueryFilter {
	if baseline == nil {
		baseline = &model.QueryFilter{}
	}
	if incoming == nil {
		return baseline.Clone()
	}

	merged := &model.QueryFilter{}

	merged.Type = pickString(incoming.Type, baseline.Type)
	// Validate each side before picking so a noisy incoming price cannot
	// erase a plausible baseline one
	merged.MinPrice = pickFloat(validPrice(incoming.MinPrice), validPrice(baseline.MinPrice))
	merged.MaxPrice = pickFloat(validPrice(incoming.MaxPrice), validPrice(baseline.MaxPrice))
	merged.MinCapacityKg = pickInt(incoming.MinCapacityKg, baseline.MinCapacityKg)
	merged.MaxCapacityKg = pickInt(incoming.MaxCapacityKg, baseline.MaxCapacityKg)
	merged.WidthCm = pickFloat(incoming.WidthCm, baseline.WidthCm)
	merged.HeightCm = pickFloat(incoming.HeightCm, baseline.HeightCm)
	merged.DepthCm = pickFloat(incoming.DepthCm, baseline.DepthCm)

	switch {
	case incoming.BrandFlexible:
		merged.Brand = nil
	case incoming.Brand != nil:
		merged.Brand = incoming.Brand
	case baseline.BrandFlexible:
		merged.Brand = nil
	default:
		merged.Brand = baseline.Brand
	}
	merged.BrandFlexible = incoming.BrandFlexible || (incoming.Brand == nil && baseline.BrandFlexible)

	// An inverted range means one of the numbers was misread; trust the cap
	if merged.MinPrice != nil && merged.MaxPrice != nil && *merged.MinPrice > *merged.MaxPrice {
		merged.MinPrice = nil
	}

	return merged
}

func pickString(incoming, baseline *string) *string {
	if incoming != nil {
		return incoming
	}
	return baseline
}

func pickFloat(incoming, baseline *float64) *float64 {
	if incoming != nil {
		return incoming
	}
	return baseline
}

func pickInt(incoming, baseline *int) *int {
	if incoming != nil {
		return incoming
	}
	return baseline
}

func validPrice(p *float64) *float64 {
	if p != nil && *p < minPlausiblePrice {
		return nil
	}
	return p
}

// updateSlotStages recomputes every slot stage from the merged filter and
// counts newly refined slots.
func (s *ConversationService) updateSlotStages(session *Session) {
	filter := session.Filter
	stages := map[SlotType]SlotStage{
		SlotBudget:     budgetStage(filter),
		SlotLoadType:   typeStage(filter),
		SlotCapacity:   capacityStage(filter, session.CapacityRefineExperiment),
		SlotBrand:      brandStage(filter),
		SlotDimensions: dimensionsStage(filter, session.AskDimensionsExperiment),
	}

	for slot, stage := range stages {
		if session.SlotStages[slot] != StageRefined && stage == StageRefined {
			session.Metrics.SlotCompleted()
		}
		session.SlotStages[slot] = stage
	}
}

func budgetStage(f *model.QueryFilter) SlotStage {
	switch {
	case f.MinPrice == nil && f.MaxPrice == nil:
		return StageMissing
	case f.MinPrice != nil && f.MaxPrice != nil:
		if *f.MaxPrice-*f.MinPrice <= budgetRefinedSpan {
			return StageRefined
		}
		return StageRough
	default:
		return StageRefined
	}
}

func typeStage(f *model.QueryFilter) SlotStage {
	if f.Type == nil {
		return StageMissing
	}
	return StageRefined
}

func capacityStage(f *model.QueryFilter, strict bool) SlotStage {
	if f.MinCapacityKg == nil && f.MaxCapacityKg == nil {
		return StageMissing
	}
	if !strict {
		return StageRefined
	}
	if f.MinCapacityKg != nil && f.MaxCapacityKg != nil {
		if *f.MaxCapacityKg-*f.MinCapacityKg <= capacityRefinedSpan {
			return StageRefined
		}
		return StageRough
	}
	return StageRough
}

func brandStage(f *model.QueryFilter) SlotStage {
	if f.BrandFlexible || f.Brand != nil {
		return StageRefined
	}
	return StageMissing
}

func dimensionsStage(f *model.QueryFilter, ask bool) SlotStage {
	if !ask {
		// Not asked for means never blocking: treat as resolved
		return StageRefined
	}
	set := 0
	for _, v := range []*float64{f.WidthCm, f.HeightCm, f.DepthCm} {
		if v != nil {
			set++
		}
	}
	switch set {
	case 0:
		return StageMissing
	case 3:
		return StageRefined
	default:
		return StageRough
	}
}

// determineNextSlot picks the next slot to ask about: fixed order, first
// one that is missing or rough. Brand is skipped when the user relaxed it
// or the catalog offers no real choice.
func (s *ConversationService) determineNextSlot(ctx context.Context, session *Session) SlotType {
	var brandCount int
	if s.brands != nil {
		brandCount = len(s.brands.Brands(ctx))
	}

	for _, slot := range slotOrder {
		if slot == SlotBrand {
			if session.Filter.BrandFlexible || (session.Filter.Brand == nil && brandCount <= 1) {
				continue
			}
		}
		if slot == SlotDimensions && session.SlotStages[slot] == StageRefined {
			continue
		}
		if stage := session.SlotStages[slot]; stage == StageMissing || stage == StageRough {
			return slot
		}
	}
	return SlotBrand
}

// shouldFinalize reports whether enough slots are resolved to show final
// results without further questions.
func (s *ConversationService) shouldFinalize(session *Session) bool {
	if session.SlotStages[SlotBudget] != StageRefined {
		return false
	}
	if session.SlotStages[SlotLoadType] != StageRefined {
		return false
	}
	if session.CapacityRefineExperiment {
		return session.SlotStages[SlotCapacity] == StageRefined
	}
	return session.SlotStages[SlotCapacity] != StageMissing
}

func (s *ConversationService) chipsFor(ctx context.Context, slot SlotType) []string {
	switch slot {
	case SlotBudget:
		return []string{"≤ 500€", "≤ 600€", "≤ 700€"}
	case SlotLoadType:
		return []string{"Front load", "Top load"}
	case SlotCapacity:
		return []string{"7kg", "8kg", "9kg"}
	case SlotBrand:
		if s.brands == nil {
			return nil
		}
		brands := s.brands.Brands(ctx)
		if len(brands) > 5 {
			brands = brands[:5]
		}
		return brands
	case SlotDimensions:
		return []string{"60×85×55 cm", "45×90×60 cm"}
	default:
		return nil
	}
}

func buildSlotSnapshots(session *Session) []model.SlotSnapshot {
	filter := session.Filter
	values := map[SlotType]string{
		SlotBudget:     filter.DescribeBudget(),
		SlotLoadType:   describeType(filter),
		SlotCapacity:   filter.DescribeCapacity(),
		SlotBrand:      filter.DescribeBrand(),
		SlotDimensions: filter.DescribeDimensions(),
	}

	snapshots := make([]model.SlotSnapshot, 0, len(slotOrder))
	for _, slot := range slotOrder {
		snapshots = append(snapshots, model.SlotSnapshot{
			Slot:  slot.String(),
			Stage: session.SlotStages[slot].String(),
			Value: values[slot],
		})
	}
	return snapshots
}

func describeType(f *model.QueryFilter) string {
	if f.Type == nil {
		return ""
	}
	return *f.Type + " load"
}
