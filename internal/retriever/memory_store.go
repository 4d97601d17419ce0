package retriever

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/motorag/motorag/internal/embedding"
	"github.com/motorag/motorag/internal/errs"
)

var _ VectorStore = (*MemoryStore)(nil)

// MemoryStore is an append-only in-memory vector store searched by brute
// force. Writers take the lock only to append; embedding calls happen
// outside it, so a slow embedding service never blocks readers.
type MemoryStore struct {
	mu          sync.RWMutex
	records     []Record
	dim         int
	defaultTopK int
	embedder    *embedding.Embedder
}

// NewMemoryStore creates a new in-memory vector store for vectors of
// length dim
func NewMemoryStore(dim int, embedder *embedding.Embedder) (*MemoryStore, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", errs.ErrInvalidConfiguration, dim)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is nil", errs.ErrInvalidConfiguration)
	}
	return &MemoryStore{
		dim:         dim,
		defaultTopK: DefaultTopK,
		embedder:    embedder,
	}, nil
}

// SetDefaultTopK changes the result count used when a search passes
// topK <= 0. Values <= 0 are ignored.
func (m *MemoryStore) SetDefaultTopK(k int) {
	if k <= 0 {
		return
	}
	m.mu.Lock()
	m.defaultTopK = k
	m.mu.Unlock()
}

// Add embeds texts and appends them as records. The batch is all or
// nothing: if any embedding fails or has the wrong length the store is left
// unchanged. A non-nil metadata map is cloned once and that clone is shared
// by every record of the call; nil gives each record its own empty map.
func (m *MemoryStore) Add(ctx context.Context, texts []string, metadata Metadata) error {
	if len(texts) == 0 {
		return nil
	}

	vectors, err := m.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed texts: %w", err)
	}

	for i, vec := range vectors {
		if len(vec) != m.dim {
			return fmt.Errorf("%w: %w: text %d has %d values, store expects %d",
				errs.ErrEmbeddingUnavailable, errs.ErrDimensionMismatch, i, len(vec), m.dim)
		}
	}

	var shared Metadata
	if metadata != nil {
		shared = maps.Clone(metadata)
	}

	batch := make([]Record, len(texts))
	for i, text := range texts {
		meta := shared
		if meta == nil {
			meta = Metadata{}
		}
		batch[i] = Record{
			Text:     text,
			Vector:   vectors[i],
			Metadata: meta,
		}
	}

	m.mu.Lock()
	m.records = append(m.records, batch...)
	m.mu.Unlock()

	return nil
}

// Search embeds the query and returns the topK most similar records
func (m *MemoryStore) Search(ctx context.Context, query string, topK int) ([]*SearchResult, error) {
	if m.Count() == 0 {
		return []*SearchResult{}, nil
	}

	queryVec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVec) != m.dim {
		return nil, fmt.Errorf("%w: %w: query has %d values, store expects %d",
			errs.ErrEmbeddingUnavailable, errs.ErrDimensionMismatch, len(queryVec), m.dim)
	}

	return m.SearchVector(queryVec, topK)
}

// SearchTexts is Search without scores or metadata
func (m *MemoryStore) SearchTexts(ctx context.Context, query string, topK int) ([]string, error) {
	results, err := m.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	return texts, nil
}

// SearchVector ranks every record against an already embedded query. Ties
// keep insertion order. A topK of zero or less means the store default, not
// an empty result. Result metadata is a copy of the stored map.
func (m *MemoryStore) SearchVector(queryVec []float32, topK int) ([]*SearchResult, error) {
	if len(queryVec) != m.dim {
		return nil, fmt.Errorf("%w: query has %d values, store expects %d", errs.ErrDimensionMismatch, len(queryVec), m.dim)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if topK <= 0 {
		topK = m.defaultTopK
	}

	queryNorm := norm(queryVec)

	type scoredRecord struct {
		record *Record
		score  float64
	}

	scored := make([]scoredRecord, len(m.records))
	for i := range m.records {
		rec := &m.records[i]
		scored[i] = scoredRecord{
			record: rec,
			score:  cosineWithNorm(queryVec, queryNorm, rec.Vector),
		}
	}

	// Sort by score descending
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// Take top K
	if topK > len(scored) {
		topK = len(scored)
	}

	results := make([]*SearchResult, topK)
	for i := 0; i < topK; i++ {
		results[i] = &SearchResult{
			Text:     scored[i].record.Text,
			Metadata: maps.Clone(scored[i].record.Metadata),
			Score:    scored[i].score,
			Distance: 1 - scored[i].score, // Convert similarity to distance
		}
	}

	return results, nil
}

// Count returns the number of stored records
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Dimension returns the fixed embedding length
func (m *MemoryStore) Dimension() int {
	return m.dim
}

// Records returns a copy of the stored records in insertion order. Vectors
// and metadata are cloned, so callers cannot reach the store's own maps.
func (m *MemoryStore) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, len(m.records))
	for i, rec := range m.records {
		out[i] = Record{
			Text:     rec.Text,
			Vector:   slices.Clone(rec.Vector),
			Metadata: maps.Clone(rec.Metadata),
		}
	}
	return out
}

// cosineSimilarity calculates the cosine similarity between two vectors of
// equal length. A zero vector on either side scores 0, and so does any
// result that is not a finite number.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	return cosineWithNorm(a, norm(a), b)
}

func cosineWithNorm(a []float32, normA float64, b []float32) float64 {
	if normA == 0 {
		return 0
	}

	var dotProduct, sumB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		sumB += float64(b[i]) * float64(b[i])
	}

	if sumB == 0 {
		return 0
	}

	score := dotProduct / (normA * math.Sqrt(sumB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
