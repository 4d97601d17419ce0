package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/motorag/motorag/internal/errs"
)

// Config holds all configuration for the application
type Config struct {
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	Store     StoreConfig     `mapstructure:"store" yaml:"store"`
	Indexer   IndexerConfig   `mapstructure:"indexer" yaml:"indexer"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Provider    string `mapstructure:"provider" yaml:"provider"` // http, ollama, openai, sentence
	Host        string `mapstructure:"host" yaml:"host"`
	Model       string `mapstructure:"model" yaml:"model"`
	APIKey      string `mapstructure:"api_key" yaml:"api_key,omitempty"` // openai only
	Timeout     int    `mapstructure:"timeout" yaml:"timeout"`           // seconds, 0 disables
	Concurrency int    `mapstructure:"concurrency" yaml:"concurrency"`
}

// StoreConfig holds vector store configuration
type StoreConfig struct {
	Dimension   int `mapstructure:"dimension" yaml:"dimension"`
	DefaultTopK int `mapstructure:"default_top_k" yaml:"default_top_k"`
}

// IndexerConfig holds chunking and document loading configuration
type IndexerConfig struct {
	ChunkSize    int      `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int      `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	IgnoreDirs   []string `mapstructure:"ignore_dirs" yaml:"ignore_dirs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:    "http",
			Host:        "http://localhost:11434",
			Model:       "nomic-embed-text",
			Timeout:     30,
			Concurrency: 1,
		},
		Store: StoreConfig{
			Dimension:   768, // nomic-embed-text
			DefaultTopK: 5,
		},
		Indexer: IndexerConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			Extensions:   []string{".txt", ".md"},
			IgnoreDirs:   []string{".git", "node_modules", "vendor", ".idea", ".vscode"},
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
	}
}

// EmbeddingTimeout returns the per-call embedding deadline.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.Timeout) * time.Second
}

// Validate checks the values that the store and chunker cannot work without.
func (c *Config) Validate() error {
	switch {
	case c.Store.Dimension <= 0:
		return fmt.Errorf("%w: store.dimension must be positive, got %d", errs.ErrInvalidConfiguration, c.Store.Dimension)
	case c.Indexer.ChunkSize <= 0:
		return fmt.Errorf("%w: indexer.chunk_size must be positive, got %d", errs.ErrInvalidConfiguration, c.Indexer.ChunkSize)
	case c.Indexer.ChunkOverlap < 0 || c.Indexer.ChunkOverlap >= c.Indexer.ChunkSize:
		return fmt.Errorf("%w: indexer.chunk_overlap must be in [0, %d), got %d",
			errs.ErrInvalidConfiguration, c.Indexer.ChunkSize, c.Indexer.ChunkOverlap)
	case c.Embedding.Timeout < 0:
		return fmt.Errorf("%w: embedding.timeout must not be negative", errs.ErrInvalidConfiguration)
	case c.Embedding.Concurrency < 1:
		return fmt.Errorf("%w: embedding.concurrency must be at least 1", errs.ErrInvalidConfiguration)
	}
	return nil
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in default locations
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".motorag"))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Environment variable overrides
	v.SetEnvPrefix("MOTORAG")
	v.AutomaticEnv()

	v.BindEnv("embedding.provider", "MOTORAG_EMBEDDING_PROVIDER")
	v.BindEnv("embedding.host", "MOTORAG_EMBEDDING_HOST")
	v.BindEnv("embedding.model", "MOTORAG_EMBEDDING_MODEL")
	v.BindEnv("embedding.api_key", "MOTORAG_EMBEDDING_API_KEY")
	v.BindEnv("embedding.timeout", "MOTORAG_EMBEDDING_TIMEOUT")
	v.BindEnv("embedding.concurrency", "MOTORAG_EMBEDDING_CONCURRENCY")
	v.BindEnv("store.dimension", "MOTORAG_STORE_DIMENSION")
	v.BindEnv("store.default_top_k", "MOTORAG_STORE_DEFAULT_TOP_K")
	v.BindEnv("indexer.chunk_size", "MOTORAG_INDEXER_CHUNK_SIZE")
	v.BindEnv("indexer.chunk_overlap", "MOTORAG_INDEXER_CHUNK_OVERLAP")
	v.BindEnv("server.host", "MOTORAG_SERVER_HOST")
	v.BindEnv("server.port", "MOTORAG_SERVER_PORT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
