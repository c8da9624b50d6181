package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"washfinder/internal/config"
	"washfinder/internal/model"
	"washfinder/internal/utils"
)

// OpenAIClient talks to an OpenAI-compatible API for chat completions and
// embeddings. All calls are non-streaming.
type OpenAIClient struct {
	cfg        config.OpenAIConfig
	httpClient *http.Client
}

var (
	_ FilterOracle = (*OpenAIClient)(nil)
	_ ChatModel    = (*OpenAIClient)(nil)
	_ Embedder     = (*OpenAIClient)(nil)
)

// NewOpenAIClient creates a client from configuration. A client with an empty
// API key is still usable: IsEnabled reports false and calls return errors.
func NewOpenAIClient(cfg config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled reports whether an API key is configured
func (c *OpenAIClient) IsEnabled() bool {
	return c.cfg.Enabled && c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a single-user-message chat completion and returns the text
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("openai client is not enabled")
	}

	reqBody := chatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.ChatTemperature,
		MaxTokens:   c.cfg.ChatMaxTokens,
	}

	var resp chatCompletionResponse
	if err := c.post(ctx, "/chat/completions", reqBody, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openai api error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

const extractionPrompt = `You extract washing machine shopping filters from user messages.
Return ONLY a JSON object with these optional fields:
  "brand": string (brand name as the user wrote it),
  "type": "front" or "top" (loading type),
  "minPrice": number (euros),
  "maxPrice": number (euros),
  "minCapacityKg": integer,
  "maxCapacityKg": integer,
  "widthCm": number,
  "heightCm": number,
  "depthCm": number,
  "brandFlexible": boolean (true if the user says any brand is fine)
Omit fields the user did not mention. Do not guess values.

User messages:
%s`

// ExtractFilter asks the chat model for a structured filter draft
func (c *OpenAIClient) ExtractFilter(ctx context.Context, text string) (*model.QueryFilter, error) {
	raw, err := c.Complete(ctx, fmt.Sprintf(extractionPrompt, text))
	if err != nil {
		return nil, err
	}

	var filter model.QueryFilter
	if err := utils.ParseAIJSON(raw, &filter); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	// Reject anything the model invents outside the type vocabulary
	if filter.Type != nil {
		t := strings.ToLower(strings.TrimSpace(*filter.Type))
		if t == "front" || t == "top" {
			filter.Type = &t
		} else {
			log.Printf("⚠️ Dropping unknown machine type from extraction: %q", *filter.Type)
			filter.Type = nil
		}
	}

	return &filter, nil
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// EmbedTexts embeds a batch of texts, preserving input order
func (c *OpenAIClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("openai client is not enabled")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	batchSize := c.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 100
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		reqBody := embeddingRequest{
			Model:      c.cfg.EmbeddingModel,
			Input:      texts[start:end],
			Dimensions: c.cfg.EmbeddingDimensions,
		}

		var resp embeddingResponse
		if err := c.post(ctx, "/embeddings", reqBody, &resp); err != nil {
			return nil, err
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("openai api error: %s", resp.Error.Message)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), end-start)
		}
		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= end-start {
				return nil, fmt.Errorf("embedding index out of range: %d", item.Index)
			}
			results[start+item.Index] = item.Embedding
		}
	}

	return results, nil
}

// EmbedText embeds a single text
func (c *OpenAIClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.APIBase, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned status %d: %s", resp.StatusCode, truncateBody(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func truncateBody(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
