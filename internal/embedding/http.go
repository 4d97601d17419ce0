package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/motorag/motorag/internal/config"
)

// EmbeddingRequest represents a request to generate embeddings
type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// EmbeddingResponse represents a response with embeddings
type EmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// HTTPClient talks to an Ollama-compatible embeddings endpoint with plain
// JSON over HTTP.
type HTTPClient struct {
	host       string
	model      string
	httpClient *http.Client
}

// NewHTTPClient creates a new embeddings client. Deadlines come from the
// caller's context, so the underlying http.Client has no timeout of its own.
func NewHTTPClient(cfg config.EmbeddingConfig) *HTTPClient {
	return &HTTPClient{
		host:       strings.TrimRight(cfg.Host, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{},
	}
}

// Name returns the provider name
func (c *HTTPClient) Name() string {
	return "http"
}

// Embed generates embeddings for the given text
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	req := EmbeddingRequest{
		Model:  c.model,
		Prompt: text,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var embResp EmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if embResp.Embedding == nil {
		return nil, fmt.Errorf("response has no embedding field")
	}

	return embResp.Embedding, nil
}

// CheckHealth checks if the embedding service is running and accessible
func (c *HTTPClient) CheckHealth(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("embedding service is not accessible at %s: %w", c.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}

	return nil
}
