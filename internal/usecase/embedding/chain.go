package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Turnstyle/ria-hunter/internal/domain"
)

// Provider is one link in the fallback chain: an embedder plus its
// per-attempt settings.
type Provider struct {
	Name     string
	Embedder domain.Embedder
	Timeout  time.Duration
}

// Chain tries embedding providers in configured order until one returns a
// vector of the expected dimensionality. Rate limits get a bounded retry
// with exponential backoff before the chain moves to the next provider;
// any other failure moves on immediately. When every provider fails the
// chain reports domain.ErrNoEmbedding and the caller degrades to the
// lexical path instead of failing the request.
type Chain struct {
	providers  []Provider
	dimensions int
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewChain creates a provider fallback chain.
// dimensions is the required vector length; a provider returning any other
// length is treated as failed. maxRetries bounds rate-limit retries per
// provider; backoff is the base delay, doubled per retry.
func NewChain(
	providers []Provider, dimensions, maxRetries int,
	backoff time.Duration, logger *zap.Logger,
) *Chain {
	return &Chain{
		providers:  providers,
		dimensions: dimensions,
		maxRetries: maxRetries,
		backoff:    backoff,
		logger:     logger,
	}
}

// Embed implements domain.Embedder over the whole chain.
func (c *Chain) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if len(c.providers) == 0 {
		return domain.EmbeddingResult{}, domain.ErrNoEmbedding
	}

	var lastErr error
	for _, p := range c.providers {
		result, err := c.embedWithRetry(ctx, p, text)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", ctx.Err())
		}

		lastErr = err
		c.logger.Warn("Embedding provider failed, trying next",
			zap.String("provider", p.Name),
			zap.Error(err),
		)
	}

	c.logger.Error("All embedding providers exhausted", zap.Error(lastErr))
	return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrNoEmbedding, lastErr)
}

// embedWithRetry runs one provider with its per-attempt timeout, retrying
// only on rate limits.
func (c *Chain) embedWithRetry(
	ctx context.Context, p Provider, text string,
) (domain.EmbeddingResult, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return domain.EmbeddingResult{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.embedOnce(ctx, p, text)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !errors.Is(err, domain.ErrRateLimited) {
			return domain.EmbeddingResult{}, err
		}
		c.logger.Debug("Embedding provider rate limited",
			zap.String("provider", p.Name),
			zap.Int("attempt", attempt+1),
		)
	}

	return domain.EmbeddingResult{}, lastErr
}

func (c *Chain) embedOnce(
	ctx context.Context, p Provider, text string,
) (domain.EmbeddingResult, error) {
	attemptCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	result, err := p.Embedder.Embed(attemptCtx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if len(result.Embedding) != c.dimensions {
		return domain.EmbeddingResult{}, fmt.Errorf(
			"provider %s returned %d dimensions, want %d: %w",
			p.Name, len(result.Embedding), c.dimensions, domain.ErrVectorDimMismatch)
	}

	return result, nil
}
