package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/motorag/motorag/internal/config"
	"github.com/motorag/motorag/internal/errs"
)

func TestOllamaProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && r.URL.Path == "/api/embeddings":
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req["model"] != "nomic-embed-text" || req["prompt"] != "cruiser" {
				t.Errorf("request = %v", req)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"embedding":[0.25,0.5,1]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(config.EmbeddingConfig{Host: srv.URL, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}

	vec, err := p.Embed(context.Background(), "cruiser")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.25 || vec[2] != 1 {
		t.Errorf("Embed() = %v, want [0.25 0.5 1]", vec)
	}

	if err := p.CheckHealth(context.Background()); err != nil {
		t.Errorf("CheckHealth() error = %v", err)
	}
}

func TestOllamaProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"nomic-embed-text\" not found"}`))
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(config.EmbeddingConfig{Host: srv.URL, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("NewOllamaProvider() error = %v", err)
	}
	if _, err := p.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestOpenAIProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/embeddings") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "text-embedding-3-small" || len(req.Input) != 1 || req.Input[0] != "sport" {
			t.Errorf("request = %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",` +
			`"data":[{"object":"embedding","index":0,"embedding":[1,0,-1]}],` +
			`"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(config.EmbeddingConfig{Host: srv.URL + "/v1", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	vec, err := p.Embed(context.Background(), "sport")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 || vec[0] != 1 || vec[2] != -1 {
		t.Errorf("Embed() = %v, want [1 0 -1]", vec)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIProvider(config.EmbeddingConfig{})
	if !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")

	tests := []struct {
		provider string
		want     string
	}{
		{"", "http"},
		{"http", "http"},
		{"ollama", "ollama"},
		{"openai", "openai"},
		{"sentence", "sentence"},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.provider, func(t *testing.T) {
			p, err := NewProvider(config.EmbeddingConfig{Provider: tt.provider, Host: "http://localhost:11434"})
			if err != nil {
				t.Fatalf("NewProvider(%q) error = %v", tt.provider, err)
			}
			if p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}

	if _, err := NewProvider(config.EmbeddingConfig{Provider: "word2vec"}); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Errorf("unknown provider error = %v, want ErrInvalidConfiguration", err)
	}
}
