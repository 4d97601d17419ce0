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

const sentenceMaxLength = 512

var _ DimensionReporter = (*SentenceProvider)(nil)

// SentenceRequest is the body of a sentence service embed call
type SentenceRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length,omitempty"`
}

// SentenceResponse is returned by the sentence service embed endpoint
type SentenceResponse struct {
	Embedding []float32 `json:"embedding"`
	Dimension int       `json:"dimension"`
}

// SentenceHealth is returned by the sentence service health endpoint
type SentenceHealth struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	Device    string `json:"device"`
	Dimension int    `json:"dimension"`
}

// SentenceProvider talks to a self-hosted sentence-transformers style
// service exposing POST /embed and GET /health
type SentenceProvider struct {
	host       string
	httpClient *http.Client
}

// NewSentenceProvider creates a client for a sentence embedding service
func NewSentenceProvider(cfg config.EmbeddingConfig) *SentenceProvider {
	return &SentenceProvider{
		host:       strings.TrimRight(cfg.Host, "/"),
		httpClient: &http.Client{},
	}
}

// Name returns the provider name
func (s *SentenceProvider) Name() string {
	return "sentence"
}

// Health fetches the service status
func (s *SentenceProvider) Health(ctx context.Context) (*SentenceHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.host+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentence service not accessible at %s: %w", s.host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("health check failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var health SentenceHealth
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &health, nil
}

// CheckHealth checks if the sentence service is healthy
func (s *SentenceProvider) CheckHealth(ctx context.Context) error {
	_, err := s.Health(ctx)
	return err
}

// Dimension returns the embedding length the service reports
func (s *SentenceProvider) Dimension(ctx context.Context) (int, error) {
	health, err := s.Health(ctx)
	if err != nil {
		return 0, err
	}
	return health.Dimension, nil
}

// Embed generates the embedding for a single text
func (s *SentenceProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(SentenceRequest{
		Text:      text,
		MaxLength: sentenceMaxLength,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var embResp SentenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if embResp.Embedding == nil {
		return nil, fmt.Errorf("response has no embedding field")
	}

	return embResp.Embedding, nil
}
