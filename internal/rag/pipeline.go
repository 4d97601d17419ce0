package rag

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/motorag/motorag/internal/config"
	"github.com/motorag/motorag/internal/embedding"
	"github.com/motorag/motorag/internal/errs"
	"github.com/motorag/motorag/internal/indexer"
	"github.com/motorag/motorag/internal/retriever"
)

// Pipeline ties the chunker, the embedder and the vector store together
type Pipeline struct {
	chunker  *indexer.Chunker
	loader   *indexer.Loader
	embedder *embedding.Embedder
	store    *retriever.MemoryStore
}

// IngestResult describes one ingested text
type IngestResult struct {
	Chunks  int `json:"chunks"`
	Skipped int `json:"skipped"`
}

// IndexResult describes a directory ingest
type IndexResult struct {
	Documents   int           `json:"documents"`
	Chunks      int           `json:"chunks"`
	Errors      []string      `json:"errors"`
	ElapsedTime time.Duration `json:"elapsed"`
}

// New builds a pipeline from configuration
func New(cfg *config.Config) (*Pipeline, error) {
	provider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	embedder := embedding.NewEmbedder(provider, embedding.Options{
		Timeout:     cfg.EmbeddingTimeout(),
		Concurrency: cfg.Embedding.Concurrency,
	})

	return NewWithEmbedder(cfg, embedder)
}

// NewWithEmbedder builds a pipeline around an existing embedder
func NewWithEmbedder(cfg *config.Config, embedder *embedding.Embedder) (*Pipeline, error) {
	chunker, err := indexer.NewChunker(cfg.Indexer.ChunkSize, cfg.Indexer.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	store, err := retriever.NewMemoryStore(cfg.Store.Dimension, embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	store.SetDefaultTopK(cfg.Store.DefaultTopK)

	return &Pipeline{
		chunker:  chunker,
		loader:   indexer.NewLoader(cfg.Indexer),
		embedder: embedder,
		store:    store,
	}, nil
}

// Store returns the underlying vector store
func (p *Pipeline) Store() *retriever.MemoryStore {
	return p.store
}

// Chunker returns the configured chunker
func (p *Pipeline) Chunker() *indexer.Chunker {
	return p.chunker
}

// Ingest chunks text with the configured window and adds every non-blank
// chunk to the store in one batch sharing metadata.
func (p *Pipeline) Ingest(ctx context.Context, text string, metadata retriever.Metadata) (*IngestResult, error) {
	return p.ingestChunks(ctx, p.chunker.Chunk(text), metadata)
}

// IngestWithWindow is Ingest with a per-call window
func (p *Pipeline) IngestWithWindow(ctx context.Context, text string, chunkSize, overlap int, metadata retriever.Metadata) (*IngestResult, error) {
	chunks, err := indexer.ChunkText(text, chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	return p.ingestChunks(ctx, chunks, metadata)
}

func (p *Pipeline) ingestChunks(ctx context.Context, chunks []indexer.Chunk, metadata retriever.Metadata) (*IngestResult, error) {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if c.Text == "" {
			continue
		}
		texts = append(texts, c.Text)
	}

	if err := p.store.Add(ctx, texts, metadata); err != nil {
		return nil, fmt.Errorf("failed to add chunks: %w", err)
	}

	return &IngestResult{
		Chunks:  len(texts),
		Skipped: len(chunks) - len(texts),
	}, nil
}

// IngestDirectory loads every supported file under root and ingests it.
// Each document's chunks carry a "source" entry with the relative path.
// Unreadable files are reported in the result; an embedding failure stops
// the run. A root that cannot be loaded is a caller error.
func (p *Pipeline) IngestDirectory(ctx context.Context, root string, progressFn func(current, total int)) (*IndexResult, error) {
	startTime := time.Now()

	loaded, err := p.loader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load documents: %w", errs.ErrInvalidConfiguration, err)
	}

	return p.ingestDocuments(ctx, loaded.Documents, nil, loaded.Errors, startTime, progressFn)
}

// IngestDocuments ingests already loaded documents
func (p *Pipeline) IngestDocuments(ctx context.Context, docs []*indexer.Document, metadata retriever.Metadata) (*IndexResult, error) {
	return p.ingestDocuments(ctx, docs, metadata, nil, time.Now(), nil)
}

func (p *Pipeline) ingestDocuments(ctx context.Context, docs []*indexer.Document, base retriever.Metadata, loadErrs []string, startTime time.Time, progressFn func(current, total int)) (*IndexResult, error) {
	result := &IndexResult{Errors: append([]string{}, loadErrs...)}

	for i, doc := range docs {
		meta := maps.Clone(base)
		if meta == nil {
			meta = retriever.Metadata{}
		}
		meta["source"] = doc.RelPath

		res, err := p.Ingest(ctx, doc.Content, meta)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %s: %w", doc.RelPath, err)
		}

		result.Documents++
		result.Chunks += res.Chunks

		if progressFn != nil {
			progressFn(i+1, len(docs))
		}
	}

	result.ElapsedTime = time.Since(startTime)
	return result, nil
}

// Search returns the best matches for query with scores and metadata
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]*retriever.SearchResult, error) {
	return p.store.Search(ctx, query, topK)
}

// SearchTexts returns only the texts of the best matches
func (p *Pipeline) SearchTexts(ctx context.Context, query string, topK int) ([]string, error) {
	return p.store.SearchTexts(ctx, query, topK)
}

// Context retrieves the best matches for query and formats them for a
// language model prompt
func (p *Pipeline) Context(ctx context.Context, query string, topK int) (string, error) {
	results, err := p.store.Search(ctx, query, topK)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}
	return BuildContext(results), nil
}

// BuildContext builds the context string from retrieved chunks
func BuildContext(results []*retriever.SearchResult) string {
	if len(results) == 0 {
		return "No relevant documents found."
	}

	var sb strings.Builder
	sb.WriteString("Here are relevant passages from the indexed documents:\n\n")

	for i, result := range results {
		sb.WriteString(fmt.Sprintf("--- Passage %d ---\n", i+1))
		if source, ok := result.Metadata["source"]; ok {
			sb.WriteString(fmt.Sprintf("Source: %v\n", source))
		}
		sb.WriteString(fmt.Sprintf("Score: %.4f\n", result.Score))
		sb.WriteString(result.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// Count returns the number of stored chunks
func (p *Pipeline) Count() int {
	return p.store.Count()
}

// Dimension returns the embedding length the store accepts
func (p *Pipeline) Dimension() int {
	return p.store.Dimension()
}

// ProviderName returns the active embedding provider
func (p *Pipeline) ProviderName() string {
	return p.embedder.Provider().Name()
}

// CheckDimension compares the length the provider reports with the store
// dimension. Providers that cannot report a length pass unchecked.
func (p *Pipeline) CheckDimension(ctx context.Context) error {
	reporter, ok := p.embedder.Provider().(embedding.DimensionReporter)
	if !ok {
		return nil
	}

	dim, err := reporter.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to read provider dimension: %w", errs.ErrEmbeddingUnavailable, err)
	}
	if dim != p.store.Dimension() {
		return fmt.Errorf("%w: %s provider reports %d, store.dimension is %d",
			errs.ErrDimensionMismatch, p.ProviderName(), dim, p.store.Dimension())
	}
	return nil
}

// CheckHealth checks if the embedding service is accessible
func (p *Pipeline) CheckHealth(ctx context.Context) error {
	return p.embedder.CheckHealth(ctx)
}
