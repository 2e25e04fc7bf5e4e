package domain

import "errors"

var (
	// ErrInvalidQuery signals client-fixable bad input; never retried.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmbeddingUnavailable signals an embedding/AI provider failure (transient).
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrStoreUnavailable signals a product store failure (transient).
	ErrStoreUnavailable = errors.New("product store unavailable")
	// ErrRateLimited signals an upstream rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrInternal signals an opaque server-side failure.
	ErrInternal = errors.New("internal error")
)
