package service

import (
	"context"
	"log"
	"strings"

	"washfinder/internal/model"
)

// Extractor turns free-form user text into a structured filter. An AI oracle
// provides the first draft when available; deterministic heuristics always
// run on top, so extraction works with the oracle disabled or failing.
type Extractor struct {
	oracle FilterOracle
	brands BrandLister
}

// BrandLister provides the known brand names for brand detection
type BrandLister interface {
	Brands(ctx context.Context) []string
}

// NewExtractor creates an extractor. oracle may be nil.
func NewExtractor(oracle FilterOracle, brands BrandLister) *Extractor {
	return &Extractor{oracle: oracle, brands: brands}
}

// Extract never returns nil: on empty input or oracle failure it falls back
// to a heuristics-only filter.
func (e *Extractor) Extract(ctx context.Context, text string) *model.QueryFilter {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &model.QueryFilter{}
	}

	draft := &model.QueryFilter{}
	if e.oracle != nil && e.oracle.IsEnabled() {
		extracted, err := e.oracle.ExtractFilter(ctx, trimmed)
		if err != nil {
			log.Printf("⚠️ Filter extraction failed, falling back to heuristics: %v", err)
		} else if extracted != nil {
			draft = extracted
		}
	}

	var brandNames []string
	if e.brands != nil {
		brandNames = e.brands.Brands(ctx)
	}

	return EnrichFilter(draft, trimmed, brandNames)
}
