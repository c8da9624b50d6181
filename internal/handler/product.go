package handler

import (
	"context"
	"net/http"
	"strconv"

	"washfinder/internal/model"

	"github.com/gin-gonic/gin"
)

// ProductGetter fetches a single catalog product
type ProductGetter interface {
	GetProductByID(ctx context.Context, productID int64) (*model.Product, error)
}

// ProductHandler exposes single-product lookup
type ProductHandler struct {
	store ProductGetter
}

// NewProductHandler creates a product handler
func NewProductHandler(store ProductGetter) *ProductHandler {
	return &ProductHandler{store: store}
}

// Get handles GET /api/v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.store.GetProductByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}
