package service

import (
	"context"
	"log"
	"sync"
)

// BrandSource lists distinct brand names from the catalog
type BrandSource interface {
	DistinctBrands(ctx context.Context) ([]string, error)
}

// BrandCatalog caches the distinct brand list. The list changes rarely;
// Evict forces a reload after catalog imports.
type BrandCatalog struct {
	repo  BrandSource
	mu    sync.RWMutex
	cache []string
}

// NewBrandCatalog creates a brand catalog backed by repo
func NewBrandCatalog(repo BrandSource) *BrandCatalog {
	return &BrandCatalog{repo: repo}
}

// Brands returns the cached brand list, loading it on first use.
// On load failure it logs and returns an empty list rather than failing
// the conversation turn.
func (c *BrandCatalog) Brands(ctx context.Context) []string {
	c.mu.RLock()
	cached := c.cache
	c.mu.RUnlock()
	if cached != nil {
		return cached
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache != nil {
		return c.cache
	}

	brands, err := c.repo.DistinctBrands(ctx)
	if err != nil {
		log.Printf("⚠️ Failed to load brand catalog: %v", err)
		return nil
	}
	if brands == nil {
		brands = []string{}
	}
	c.cache = brands
	return c.cache
}

// Evict clears the cached brand list
func (c *BrandCatalog) Evict() {
	c.mu.Lock()
	c.cache = nil
	c.mu.Unlock()
}
