package domain

import "errors"

var (
	// ErrInvalidQuery signals a caller error (empty or oversized query string).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrProfileNotFound signals a missing profile record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoEmbedding signals that every embedding provider was exhausted.
	// Callers degrade to lexical-only retrieval; this never fails a request.
	ErrNoEmbedding = errors.New("no embedding available")
	// ErrEmbeddingProviderError signals a single provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate-limit-class provider error, retryable
	// with backoff before advancing to the next provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrVectorDimMismatch signals a provider returning the wrong vector width.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrDecompositionMalformed signals unusable language-model output.
	// Always recovered via the rule-based fallback parser.
	ErrDecompositionMalformed = errors.New("malformed decomposition")
)
