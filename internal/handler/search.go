package handler

import (
	"net/http"
	"strconv"
	"strings"

	"washfinder/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler exposes the one-shot search endpoint and the brand catalog
type SearchHandler struct {
	search  *service.SearchService
	catalog *service.BrandCatalog
}

// NewSearchHandler creates a search handler
func NewSearchHandler(search *service.SearchService, catalog *service.BrandCatalog) *SearchHandler {
	return &SearchHandler{search: search, catalog: catalog}
}

// Search handles GET /api/v1/search?q=...&k=...
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be an integer between 1 and 50"})
			return
		}
		limit = parsed
	}

	resp, err := h.search.Search(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Brands handles GET /api/v1/brands
func (h *SearchHandler) Brands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brands": h.catalog.Brands(c.Request.Context())})
}

// RefreshBrands handles POST /api/v1/brands/refresh, reloading the catalog
// after product imports.
func (h *SearchHandler) RefreshBrands(c *gin.Context) {
	h.catalog.Evict()
	brands := h.catalog.Brands(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"brands": brands, "refreshed": true})
}
