package client

import (
	"fmt"

	"github.com/coderopp/smartneed/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery         = domain.ErrInvalidQuery
	ErrProductNotFound      = domain.ErrProductNotFound
	ErrRateLimited          = domain.ErrRateLimited
	ErrEmbeddingUnavailable = domain.ErrEmbeddingUnavailable
	ErrStoreUnavailable     = domain.ErrStoreUnavailable
	ErrInternal             = domain.ErrInternal
)

// APIError is a structured error response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("smartneed: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Unwrap maps the machine-readable code back onto the domain sentinel so
// callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_error":
		return ErrInvalidQuery
	case "not_found":
		return ErrProductNotFound
	case "rate_limited":
		return ErrRateLimited
	case "embedding_unavailable":
		return ErrEmbeddingUnavailable
	case "store_unavailable":
		return ErrStoreUnavailable
	default:
		return ErrInternal
	}
}
