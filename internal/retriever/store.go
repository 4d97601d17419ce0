package retriever

import "context"

// DefaultTopK is used when a search asks for zero or fewer results
const DefaultTopK = 5

// Metadata is an open set of JSON-compatible values attached to a record
type Metadata map[string]any

// Record is one stored (text, vector, metadata) triple
type Record struct {
	Text     string    `json:"text"`
	Vector   []float32 `json:"vector"`
	Metadata Metadata  `json:"metadata"`
}

// SearchResult represents a search result with similarity score
type SearchResult struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
	Score    float64  `json:"score"`
	Distance float64  `json:"distance"`
}

// VectorStore is the interface for vector storage backends. The in-memory
// brute-force store implements it; an approximate index can replace it
// without changing callers.
type VectorStore interface {
	// Add embeds each text and appends the records. All texts of one call
	// share the same metadata.
	Add(ctx context.Context, texts []string, metadata Metadata) error

	// Search ranks every record against the query and returns the best topK
	// with scores and metadata. topK <= 0 selects the store's default count
	// (DefaultTopK unless configured); it never means "no results".
	Search(ctx context.Context, query string, topK int) ([]*SearchResult, error)

	// SearchTexts ranks like Search but returns only the texts
	SearchTexts(ctx context.Context, query string, topK int) ([]string, error)

	// Count returns the number of stored records
	Count() int

	// Dimension returns the fixed embedding length
	Dimension() int
}
