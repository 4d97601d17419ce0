package indexer

import (
	"fmt"
	"strings"

	"github.com/motorag/motorag/internal/errs"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunker splits text into overlapping character windows
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a new chunker. The parameters are validated up front
// so a misconfigured chunker never reaches a document.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if err := validateWindow(chunkSize, chunkOverlap); err != nil {
		return nil, err
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}, nil
}

// Chunk splits text using the configured window
func (c *Chunker) Chunk(text string) []Chunk {
	return splitWindows([]rune(text), c.chunkSize, c.chunkOverlap)
}

// ChunkSize returns the configured window length in characters
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// ChunkOverlap returns the configured overlap in characters
func (c *Chunker) ChunkOverlap() int { return c.chunkOverlap }

// ChunkText splits text into windows of chunkSize characters, each starting
// chunkSize-overlap characters after the previous one. The final window may
// be shorter and always reaches the end of the text.
func ChunkText(text string, chunkSize, overlap int) ([]Chunk, error) {
	if err := validateWindow(chunkSize, overlap); err != nil {
		return nil, err
	}
	return splitWindows([]rune(text), chunkSize, overlap), nil
}

func validateWindow(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", errs.ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", errs.ErrInvalidConfiguration, chunkSize, overlap)
	}
	return nil
}

func splitWindows(runes []rune, chunkSize, overlap int) []Chunk {
	if len(runes) == 0 {
		return []Chunk{}
	}

	step := chunkSize - overlap
	chunks := make([]Chunk, 0, len(runes)/step+1)

	for start := 0; ; start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, Chunk{
			Text:  strings.TrimSpace(string(runes[start:end])),
			Start: start,
			End:   end,
		})

		// If we've reached the end, stop
		if start+chunkSize >= len(runes) {
			break
		}
	}

	return chunks
}
