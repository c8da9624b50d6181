package service

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"washfinder/internal/model"
)

// Reranker orders candidate products by semantic similarity between the
// user's query and a compact product text. Product embeddings are cached
// in memory by product ID; stored embeddings from the database are used
// before asking the embedder.
type Reranker struct {
	embedder Embedder

	mu    sync.RWMutex
	cache map[int64][]float32
}

// NewReranker creates a reranker. embedder may be nil; Rerank then keeps
// the input order.
func NewReranker(embedder Embedder) *Reranker {
	return &Reranker{
		embedder: embedder,
		cache:    make(map[int64][]float32),
	}
}

// Rerank returns up to limit products, most similar first. On any embedding
// failure the original (price-ranked) order is preserved rather than losing
// the results.
func (r *Reranker) Rerank(ctx context.Context, query string, products []model.Product, limit int) []model.Product {
	if len(products) == 0 {
		return products
	}
	if limit > len(products) || limit < 1 {
		limit = len(products)
	}
	if r.embedder == nil || strings.TrimSpace(query) == "" {
		return products[:limit]
	}

	queryVec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		log.Printf("⚠️ Query embedding failed, keeping retrieval order: %v", err)
		return products[:limit]
	}

	type scored struct {
		product model.Product
		score   float64
	}
	items := make([]scored, 0, len(products))
	for i := range products {
		p := products[i]
		vec, err := r.embeddingFor(ctx, &p)
		if err != nil {
			log.Printf("⚠️ Product embedding failed, keeping retrieval order: %v", err)
			return products[:limit]
		}
		items = append(items, scored{product: p, score: cosineSimilarity(queryVec, vec)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	result := make([]model.Product, 0, limit)
	for _, item := range items[:limit] {
		result = append(result, item.product)
	}
	return result
}

func (r *Reranker) embeddingFor(ctx context.Context, p *model.Product) ([]float32, error) {
	if p.ID != 0 {
		r.mu.RLock()
		vec, ok := r.cache[p.ID]
		r.mu.RUnlock()
		if ok {
			return vec, nil
		}
	}

	if stored := p.Embedding.Slice(); len(stored) > 0 {
		r.store(p.ID, stored)
		return stored, nil
	}

	vec, err := r.embedder.EmbedText(ctx, ProductText(p))
	if err != nil {
		return nil, err
	}
	r.store(p.ID, vec)
	return vec, nil
}

func (r *Reranker) store(id int64, vec []float32) {
	if id == 0 {
		return
	}
	r.mu.Lock()
	r.cache[id] = vec
	r.mu.Unlock()
}

// Reset clears the embedding cache, e.g. after catalog reimports
func (r *Reranker) Reset() {
	r.mu.Lock()
	r.cache = make(map[int64][]float32)
	r.mu.Unlock()
}

// ProductText builds the text a product is embedded from: brand, model,
// type and description, skipping empty parts.
func ProductText(p *model.Product) string {
	var parts []string
	for _, field := range []*string{p.Brand, p.Model, p.Type, p.Description} {
		if field != nil && strings.TrimSpace(*field) != "" {
			parts = append(parts, strings.TrimSpace(*field))
		}
	}
	return strings.Join(parts, " ")
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < 1e-9 {
		return 0
	}
	return dot / denom
}
