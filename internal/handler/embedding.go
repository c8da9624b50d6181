package handler

import (
	"context"
	"fmt"
	"net/http"

	"washfinder/internal/model"
	"washfinder/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingStore persists product embeddings
type EmbeddingStore interface {
	BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string)
}

// EmbeddingHandler accepts precomputed product embeddings for backfill
type EmbeddingHandler struct {
	store      EmbeddingStore
	reranker   *service.Reranker
	dimensions int
}

// NewEmbeddingHandler creates an embedding handler. dimensions is the
// expected vector size; mismatched vectors are rejected.
func NewEmbeddingHandler(store EmbeddingStore, reranker *service.Reranker, dimensions int) *EmbeddingHandler {
	return &EmbeddingHandler{store: store, reranker: reranker, dimensions: dimensions}
}

// BatchUpdate handles POST /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "embeddings array is empty"})
		return
	}

	valid := make([]model.EmbeddingItem, 0, len(req.Embeddings))
	var errors []string
	for _, item := range req.Embeddings {
		if len(item.Embedding) != h.dimensions {
			errors = append(errors, fmt.Sprintf("product_id %d: embedding has %d dimensions, want %d",
				item.ProductID, len(item.Embedding), h.dimensions))
			continue
		}
		valid = append(valid, item)
	}

	success := 0
	if len(valid) > 0 {
		var storeErrors []string
		success, storeErrors = h.store.BatchUpdateEmbeddings(c.Request.Context(), valid)
		errors = append(errors, storeErrors...)
	}

	if success > 0 && h.reranker != nil {
		// Cached vectors may now be stale
		h.reranker.Reset()
	}

	c.JSON(http.StatusOK, model.EmbeddingBatchResponse{
		Success: success,
		Failed:  len(req.Embeddings) - success,
		Errors:  errors,
	})
}
