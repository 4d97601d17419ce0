// Package errs defines the error taxonomy shared by the chunker, the
// embedding adapters and the vector store. Callers match with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidConfiguration is returned for unusable chunker or store
	// parameters (non-positive chunk size, overlap >= chunk size, dim <= 0).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch is returned when an embedding does not have the
	// store's fixed dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmbeddingUnavailable is returned when the embedding adapter fails:
	// network error, non-success status or malformed payload.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrEmbeddingTimeout is returned when an embedding call exceeds its deadline.
	ErrEmbeddingTimeout = errors.New("embedding timeout")
)
