package embedding

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/motorag/motorag/internal/errs"
)

// Options tune how an Embedder calls its provider
type Options struct {
	// Timeout bounds every single provider call. Zero disables it.
	Timeout time.Duration
	// Concurrency caps in-flight calls in EmbedTexts. Values below 1 mean 1.
	Concurrency int
}

// Embedder wraps a Provider with per-call deadlines, bounded concurrency and
// error classification. Every error it returns wraps either
// errs.ErrEmbeddingTimeout or errs.ErrEmbeddingUnavailable.
type Embedder struct {
	provider    Provider
	timeout     time.Duration
	concurrency int
}

// NewEmbedder creates a new embedder
func NewEmbedder(provider Provider, opts Options) *Embedder {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Embedder{
		provider:    provider,
		timeout:     opts.Timeout,
		concurrency: concurrency,
	}
}

// Provider returns the wrapped provider
func (e *Embedder) Provider() Provider {
	return e.provider
}

// Embed generates the embedding for one text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	vec, err := e.provider.Embed(callCtx, text)
	if err != nil {
		if isTimeout(callCtx, err) {
			return nil, fmt.Errorf("%w: %s: %w", errs.ErrEmbeddingTimeout, e.provider.Name(), err)
		}
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrEmbeddingUnavailable, e.provider.Name(), err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: %s: empty embedding", errs.ErrEmbeddingUnavailable, e.provider.Name())
	}

	return vec, nil
}

// EmbedTexts embeds every text with one provider call each and returns the
// vectors in input order. The first failure cancels outstanding calls and is
// returned; no partial result is handed back.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("text %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// CheckHealth probes the provider when it supports health checks
func (e *Embedder) CheckHealth(ctx context.Context) error {
	hc, ok := e.provider.(HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.CheckHealth(ctx); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrEmbeddingUnavailable, err)
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
