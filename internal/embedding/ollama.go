package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/motorag/motorag/internal/config"
	"github.com/motorag/motorag/internal/errs"
)

// OllamaProvider generates embeddings through the official Ollama API client
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a new Ollama embedding provider. An empty host
// falls back to OLLAMA_HOST via the client's environment lookup.
func NewOllamaProvider(cfg config.EmbeddingConfig) (*OllamaProvider, error) {
	var client *api.Client

	if cfg.Host != "" {
		u, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("%w: parse ollama host: %v", errs.ErrInvalidConfiguration, err)
		}
		client = api.NewClient(u, &http.Client{})
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client from environment: %w", err)
		}
	}

	return &OllamaProvider{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Embed generates an embedding vector for the given text
func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  p.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embed: no embedding returned")
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

func (p *OllamaProvider) CheckHealth(ctx context.Context) error {
	if err := p.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}
