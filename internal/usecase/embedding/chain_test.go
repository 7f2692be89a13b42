package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Turnstyle/ria-hunter/internal/domain"
)

type mockEmbedder struct {
	results []domain.EmbeddingResult
	errs    []error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	i := m.calls
	m.calls++
	if i >= len(m.errs) {
		i = len(m.errs) - 1
	}
	return m.results[i], m.errs[i]
}

func fixed(result domain.EmbeddingResult, err error) *mockEmbedder {
	return &mockEmbedder{results: []domain.EmbeddingResult{result}, errs: []error{err}}
}

func vec(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 0.1
	}
	return v
}

func newChain(dims int, providers ...Provider) *Chain {
	return NewChain(providers, dims, 2, time.Millisecond, zap.NewNop())
}

func TestChain_FirstProviderWins(t *testing.T) {
	first := fixed(domain.EmbeddingResult{Embedding: vec(3), TotalTokens: 7}, nil)
	second := fixed(domain.EmbeddingResult{Embedding: vec(3)}, nil)

	chain := newChain(3,
		Provider{Name: "a", Embedder: first},
		Provider{Name: "b", Embedder: second},
	)

	res, err := chain.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 7 {
		t.Fatalf("expected first provider's result, got %+v", res)
	}
	if second.calls != 0 {
		t.Fatal("second provider must not be called when the first succeeds")
	}
}

func TestChain_FallsThroughOnFailure(t *testing.T) {
	first := fixed(domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError)
	second := fixed(domain.EmbeddingResult{Embedding: vec(3)}, nil)

	chain := newChain(3,
		Provider{Name: "a", Embedder: first},
		Provider{Name: "b", Embedder: second},
	)

	res, err := chain.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Fatalf("expected second provider's vector, got %v", res.Embedding)
	}
	if first.calls != 1 {
		t.Fatalf("non-rate-limit failure must not retry, got %d calls", first.calls)
	}
}

func TestChain_DimensionMismatchIsProviderFailure(t *testing.T) {
	short := fixed(domain.EmbeddingResult{Embedding: vec(2)}, nil)
	good := fixed(domain.EmbeddingResult{Embedding: vec(3)}, nil)

	chain := newChain(3,
		Provider{Name: "short", Embedder: short},
		Provider{Name: "good", Embedder: good},
	)

	res, err := chain.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Fatalf("expected 3-dim vector, got %d", len(res.Embedding))
	}
}

func TestChain_RateLimitRetriesThenMovesOn(t *testing.T) {
	limited := &mockEmbedder{
		results: []domain.EmbeddingResult{{}, {}, {}},
		errs:    []error{domain.ErrRateLimited, domain.ErrRateLimited, domain.ErrRateLimited},
	}
	backup := fixed(domain.EmbeddingResult{Embedding: vec(3)}, nil)

	chain := newChain(3,
		Provider{Name: "limited", Embedder: limited},
		Provider{Name: "backup", Embedder: backup},
	)

	res, err := chain.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Fatalf("expected backup vector, got %v", res.Embedding)
	}
	// initial attempt + 2 retries
	if limited.calls != 3 {
		t.Fatalf("expected 3 attempts against rate-limited provider, got %d", limited.calls)
	}
}

func TestChain_RateLimitRecoversWithinRetries(t *testing.T) {
	flaky := &mockEmbedder{
		results: []domain.EmbeddingResult{{}, {Embedding: vec(3), TotalTokens: 4}},
		errs:    []error{domain.ErrRateLimited, nil},
	}

	chain := newChain(3, Provider{Name: "flaky", Embedder: flaky})

	res, err := chain.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 4 {
		t.Fatalf("expected recovery on retry, got %+v", res)
	}
}

func TestChain_ExhaustionReportsNoEmbedding(t *testing.T) {
	chain := newChain(3,
		Provider{Name: "a", Embedder: fixed(domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError)},
		Provider{Name: "b", Embedder: fixed(domain.EmbeddingResult{}, errors.New("connection refused"))},
	)

	_, err := chain.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrNoEmbedding) {
		t.Fatalf("expected ErrNoEmbedding, got %v", err)
	}
}

func TestChain_NoProviders(t *testing.T) {
	chain := newChain(3)
	_, err := chain.Embed(context.Background(), "text")
	if !errors.Is(err, domain.ErrNoEmbedding) {
		t.Fatalf("expected ErrNoEmbedding, got %v", err)
	}
}
