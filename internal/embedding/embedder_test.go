package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/motorag/motorag/internal/errs"
)

// funcProvider adapts a function to the Provider interface
type funcProvider func(ctx context.Context, text string) ([]float32, error)

func (f funcProvider) Embed(ctx context.Context, text string) ([]float32, error) { return f(ctx, text) }
func (f funcProvider) Name() string                                                 { return "func" }

func TestEmbedderEmbedTextsKeepsOrder(t *testing.T) {
	var inFlight, peak int32
	p := funcProvider(func(ctx context.Context, text string) ([]float32, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return []float32{float32(len(text))}, nil
	})

	e := NewEmbedder(p, Options{Concurrency: 3})
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "g"}
	vecs, err := e.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	for i, text := range texts {
		if vecs[i][0] != float32(len(text)) {
			t.Errorf("vecs[%d] = %v, want [%d]", i, vecs[i], len(text))
		}
	}
	if peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak)
	}
}

func TestEmbedderSequentialByDefault(t *testing.T) {
	var mu sync.Mutex
	var order []string
	p := funcProvider(func(ctx context.Context, text string) ([]float32, error) {
		mu.Lock()
		order = append(order, text)
		mu.Unlock()
		return []float32{1}, nil
	})

	e := NewEmbedder(p, Options{})
	if _, err := e.EmbedTexts(context.Background(), []string{"x", "y", "z"}); err != nil {
		t.Fatalf("EmbedTexts() error = %v", err)
	}
	if fmt.Sprint(order) != "[x y z]" {
		t.Errorf("call order = %v, want [x y z]", order)
	}
}

func TestEmbedderClassifiesFailure(t *testing.T) {
	p := funcProvider(func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, errors.New("connection refused")
		}
		return []float32{1}, nil
	})

	e := NewEmbedder(p, Options{})
	vecs, err := e.EmbedTexts(context.Background(), []string{"ok", "bad", "ok"})
	if !errors.Is(err, errs.ErrEmbeddingUnavailable) {
		t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
	}
	if errors.Is(err, errs.ErrEmbeddingTimeout) {
		t.Errorf("plain failure must not be reported as timeout: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected no partial result, got %v", vecs)
	}
}

func TestEmbedderEmptyVector(t *testing.T) {
	p := funcProvider(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{}, nil
	})
	if _, err := NewEmbedder(p, Options{}).Embed(context.Background(), "x"); !errors.Is(err, errs.ErrEmbeddingUnavailable) {
		t.Fatalf("error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEmbedderTimeout(t *testing.T) {
	p := funcProvider(func(ctx context.Context, text string) ([]float32, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return []float32{1}, nil
		}
	})

	e := NewEmbedder(p, Options{Timeout: 20 * time.Millisecond})
	start := time.Now()
	_, err := e.Embed(context.Background(), "slow")
	if !errors.Is(err, errs.ErrEmbeddingTimeout) {
		t.Fatalf("error = %v, want ErrEmbeddingTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestEmbedderCheckHealth(t *testing.T) {
	plain := funcProvider(func(ctx context.Context, text string) ([]float32, error) { return nil, nil })
	if err := NewEmbedder(plain, Options{}).CheckHealth(context.Background()); err != nil {
		t.Errorf("provider without health check should be healthy, got %v", err)
	}

	down := newTestHTTPClient("http://127.0.0.1:1")
	if err := NewEmbedder(down, Options{Timeout: time.Second}).CheckHealth(context.Background()); !errors.Is(err, errs.ErrEmbeddingUnavailable) {
		t.Errorf("CheckHealth() error = %v, want ErrEmbeddingUnavailable", err)
	}
}
