package embedding

import (
	"context"
	"fmt"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/motorag/motorag/internal/config"
	"github.com/motorag/motorag/internal/errs"
)

// OpenAIProvider uses an OpenAI-compatible API for embeddings
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI embedder. The API key comes from the
// config, or from OPENAI_API_KEY when the config leaves it empty. A non-empty
// host replaces the default base URL, so compatible gateways work too.
func NewOpenAIProvider(cfg config.EmbeddingConfig) (*OpenAIProvider, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("%w: openai provider needs embedding.api_key or OPENAI_API_KEY", errs.ErrInvalidConfiguration)
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.Host != "" {
		clientCfg.BaseURL = cfg.Host
	}
	clientCfg.HTTPClient = &http.Client{}

	model := cfg.Model
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Embed generates an embedding for a single text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embed: no embedding data returned")
	}

	data := resp.Data[0].Embedding
	v := make([]float32, len(data))
	for i := range data {
		v[i] = float32(data[i])
	}

	return v, nil
}
