package service

import (
	"context"
	"log"
	"strings"
	"time"

	"washfinder/internal/config"
	"washfinder/internal/model"
)

// ProductStore is the catalog access the search layer needs
type ProductStore interface {
	Preview(ctx context.Context, filter *model.QueryFilter, limit int) ([]model.Product, error)
	FinalCandidates(ctx context.Context, filter *model.QueryFilter, toleranceCm float64, fetchSize int) ([]model.Product, error)
}

// ProductSearchService retrieves and ranks products: structured filtering
// in the database, semantic reranking on top.
type ProductSearchService struct {
	store    ProductStore
	reranker *Reranker
	cfg      config.SearchConfig
}

var _ ProductFinder = (*ProductSearchService)(nil)

// NewProductSearchService creates the search service
func NewProductSearchService(store ProductStore, reranker *Reranker, cfg config.SearchConfig) *ProductSearchService {
	return &ProductSearchService{store: store, reranker: reranker, cfg: cfg}
}

// Preview fetches a small structured-only candidate set
func (s *ProductSearchService) Preview(ctx context.Context, filter *model.QueryFilter, limit int) ([]model.Product, error) {
	return s.store.Preview(ctx, filter, limit)
}

// FinalResults over-fetches candidates and reranks them semantically
// against the query.
func (s *ProductSearchService) FinalResults(ctx context.Context, query string, filter *model.QueryFilter, limit int) ([]model.Product, error) {
	candidates, err := s.store.FinalCandidates(ctx, filter, s.cfg.DimensionToleranceCm, s.fetchSize(limit))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		query = buildSearchQuery(filter)
	}
	return s.reranker.Rerank(ctx, query, candidates, limit), nil
}

func (s *ProductSearchService) fetchSize(limit int) int {
	size := limit * s.cfg.CandidateFetchFactor
	if size < s.cfg.CandidateFetchMin {
		size = s.cfg.CandidateFetchMin
	}
	return size
}

// buildSearchQuery renders a synthetic query from the filter when no user
// text is available for the reranker.
func buildSearchQuery(filter *model.QueryFilter) string {
	parts := []string{"washing machine"}
	if filter != nil {
		if filter.Brand != nil {
			parts = append(parts, *filter.Brand)
		}
		if filter.Type != nil {
			parts = append(parts, *filter.Type+" load")
		}
		if c := filter.DescribeCapacity(); c != "" {
			parts = append(parts, c)
		}
		if b := filter.DescribeBudget(); b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, " ")
}

// SearchService answers the one-shot search endpoint: extract a filter from
// the query, retrieve, rerank, explain.
type SearchService struct {
	extractor FilterExtractor
	store     ProductStore
	reranker  *Reranker
	answers   AnswerWriter
	cfg       config.SearchConfig
}

// NewSearchService creates the one-shot search service
func NewSearchService(extractor FilterExtractor, store ProductStore, reranker *Reranker, answers AnswerWriter, cfg config.SearchConfig) *SearchService {
	return &SearchService{
		extractor: extractor,
		store:     store,
		reranker:  reranker,
		answers:   answers,
		cfg:       cfg,
	}
}

// Search runs the full pipeline for a single free-text query
func (s *SearchService) Search(ctx context.Context, query string, limit int) (*model.SearchResponse, error) {
	start := time.Now()
	if limit < 1 {
		limit = s.cfg.FinalLimit
	}

	filter := s.extractor.Extract(ctx, query)

	fetchSize := limit * s.cfg.CandidateFetchFactor
	if fetchSize < s.cfg.CandidateFetchMin {
		fetchSize = s.cfg.CandidateFetchMin
	}

	candidates, err := s.store.FinalCandidates(ctx, filter, s.cfg.DimensionToleranceCm, fetchSize)
	if err != nil {
		return nil, err
	}
	sizeBeforeRerank := len(candidates)

	// Nothing matches the strict filter: fall back to the whole catalog and
	// let the reranker surface the closest machines.
	if len(candidates) == 0 {
		log.Printf("⚠️ No products match the structured filter, falling back to full catalog")
		candidates, err = s.store.FinalCandidates(ctx, &model.QueryFilter{}, s.cfg.DimensionToleranceCm, fetchSize)
		if err != nil {
			return nil, err
		}
	}

	results := s.reranker.Rerank(ctx, query, candidates, limit)
	explanation := s.answers.Explain(ctx, query, filter, results)

	return &model.SearchResponse{
		Query:            query,
		Filter:           filter,
		SizeBeforeRerank: sizeBeforeRerank,
		Results:          results,
		Explanation:      explanation,
		Took:             time.Since(start).Milliseconds(),
	}, nil
}
