package embedding

import (
	"context"
	"fmt"

	"github.com/motorag/motorag/internal/config"
	"github.com/motorag/motorag/internal/errs"
)

// Provider is the interface for embedding providers
type Provider interface {
	// Embed generates the embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name
	Name() string
}

// HealthChecker is implemented by providers that can probe their backend
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// DimensionReporter is implemented by providers whose backend can report the
// embedding length before anything is embedded
type DimensionReporter interface {
	Dimension(ctx context.Context) (int, error)
}

// NewProvider creates an embedding provider based on configuration
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case "http", "":
		return NewHTTPClient(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	case "sentence":
		return NewSentenceProvider(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider: %s", errs.ErrInvalidConfiguration, cfg.Provider)
	}
}
