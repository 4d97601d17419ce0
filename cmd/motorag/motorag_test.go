package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/motorag/motorag/internal/config"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := config.Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	return path
}

// embeddingServer answers /api/embeddings with keyword counts
func embeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		lower := strings.ToLower(req.Prompt)
		fmt.Fprintf(w, `{"embedding":[%d.5,%d.5,%d.5]}`,
			strings.Count(lower, "sport"), strings.Count(lower, "cruiser"), strings.Count(lower, "scooter"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChunkCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("abcdefghij"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := writeConfig(t, config.DefaultConfig())

	out, err := runCmd(t, "--config", cfgPath, "chunk", path, "--size", "4", "--overlap", "1")
	if err != nil {
		t.Fatalf("chunk error = %v", err)
	}
	for _, want := range []string{"3 chunks", "[0:4] ---\nabcd", "[3:7] ---\ndefg", "[6:10] ---\nghij"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCmd(t, "--config", cfgPath, "chunk", path, "--size", "4", "--overlap", "4"); err == nil {
		t.Error("expected error for overlap >= size")
	}
}

func TestSearchCommand(t *testing.T) {
	srv := embeddingServer(t)

	cfg := config.DefaultConfig()
	cfg.Embedding.Host = srv.URL
	cfg.Store.Dimension = 3
	cfgPath := writeConfig(t, cfg)

	dir := t.TempDir()
	docs := map[string]string{
		"sport.txt":   "A sport bike built for the track.",
		"cruiser.md":  "The cruiser is comfortable on long roads.",
		"scooter.txt": "A scooter for the city.",
	}
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCmd(t, "--config", cfgPath, "search", dir, "fast", "cruiser", "--top-k", "1", "--metadata")
	if err != nil {
		t.Fatalf("search error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Indexed 3 documents, 3 chunks") {
		t.Errorf("missing index summary:\n%s", out)
	}
	if !strings.Contains(out, "1. [") || !strings.Contains(out, "cruiser.md\nThe cruiser is comfortable") {
		t.Errorf("unexpected top result:\n%s", out)
	}
	if strings.Contains(out, "2. ") {
		t.Errorf("expected a single result:\n%s", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := runCmd(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Dimension != config.DefaultConfig().Store.Dimension {
		t.Errorf("Dimension = %d", cfg.Store.Dimension)
	}

	if _, err := runCmd(t, "config", "init", path); err == nil {
		t.Error("expected refusal to overwrite")
	}
	if _, err := runCmd(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("--force error = %v", err)
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Indexer.ChunkOverlap = cfg.Indexer.ChunkSize
	cfgPath := writeConfig(t, cfg)

	if _, err := runCmd(t, "--config", cfgPath, "chunk", cfgPath); err == nil {
		t.Error("expected invalid configuration error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file error = %v, want nil", err)
	}

	good := filepath.Join(dir, "good.env")
	if err := os.WriteFile(good, []byte("MOTORAG_DOTENV_CHECK=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("MOTORAG_DOTENV_CHECK") })
	if err := loadDotEnv(good); err != nil {
		t.Fatalf("valid file error = %v", err)
	}
	if got := os.Getenv("MOTORAG_DOTENV_CHECK"); got != "loaded" {
		t.Errorf("MOTORAG_DOTENV_CHECK = %q, want loaded", got)
	}

	bad := filepath.Join(dir, "bad.env")
	if err := os.WriteFile(bad, []byte("BAD-KEY=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := loadDotEnv(bad); err == nil {
		t.Error("expected error for malformed env file")
	}
}
