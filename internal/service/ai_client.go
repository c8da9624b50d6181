package service

import (
	"context"

	"washfinder/internal/model"
)

// FilterOracle extracts a structured filter from free-form user text.
// Implementations may be unavailable (no API key); callers must degrade
// gracefully when IsEnabled returns false.
type FilterOracle interface {
	ExtractFilter(ctx context.Context, text string) (*model.QueryFilter, error)
	IsEnabled() bool
}

// ChatModel produces short natural-language texts (questions, explanations)
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
	IsEnabled() bool
}

// Embedder converts text into a dense vector
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}
