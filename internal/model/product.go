package model

import (
	"github.com/pgvector/pgvector-go"
)

// Product represents a washing machine in the catalog. Nullable columns map
// to pointers; ID 0 means the row has no stable identity yet.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Brand       *string         `json:"brand,omitempty" db:"brand"`
	Model       *string         `json:"model,omitempty" db:"model"`
	Type        *string         `json:"type,omitempty" db:"type"` // front | top
	Price       *float64        `json:"price,omitempty" db:"price"`
	CapacityKg  *int            `json:"capacity_kg,omitempty" db:"capacity_kg"`
	WidthCm     *float64        `json:"width_cm,omitempty" db:"width_cm"`
	HeightCm    *float64        `json:"height_cm,omitempty" db:"height_cm"`
	DepthCm     *float64        `json:"depth_cm,omitempty" db:"depth_cm"`
	Description *string         `json:"description,omitempty" db:"description"`
	Embedding   pgvector.Vector `json:"-" db:"embedding"`
}

// DisplayName returns "Brand Model" with missing parts skipped.
func (p *Product) DisplayName() string {
	brand := ""
	if p.Brand != nil {
		brand = *p.Brand
	}
	model := ""
	if p.Model != nil {
		model = *p.Model
	}
	switch {
	case brand != "" && model != "":
		return brand + " " + model
	case brand != "":
		return brand
	default:
		return model
	}
}

// EmbeddingBatchRequest represents a batch embedding backfill request.
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem carries one precomputed product embedding.
type EmbeddingItem struct {
	ProductID int64     `json:"product_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
	Text      string    `json:"text,omitempty"` // The text used to generate the embedding
}

// EmbeddingBatchResponse reports the outcome of a batch embedding update.
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
