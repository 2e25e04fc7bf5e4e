// Package session drives the client-side lifecycle of a search request:
// Idle -> Loading -> {Success, Error} -> Loading on the next query. A
// submission made while a request is in flight supersedes it, and the
// stale response is discarded when it eventually resolves.
package session

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/result"
)

// Status is the lifecycle state of the current search.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Category classifies a failed search for user-facing display.
type Category string

const (
	CategoryValidation  Category = "validation"
	CategoryRateLimited Category = "rate_limited"
	CategoryServerError Category = "server_error"
	CategoryTimeout     Category = "timeout"
	CategoryNetwork     Category = "network"
	CategoryUnknown     Category = "unknown"
)

// classify maps an error chain onto a display category. Typed domain
// sentinels win over transport-level failures.
func classify(err error) Category {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return CategoryValidation
	case errors.Is(err, domain.ErrRateLimited):
		return CategoryRateLimited
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrInternal):
		return CategoryServerError
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryNetwork
	}
	return CategoryUnknown
}

// Snapshot is an immutable view of the session at one point in time.
type Snapshot struct {
	Status  Status
	Query   string
	Filters filter.Set

	// Success fields.
	Results      []result.Result
	TotalMatches int
	Took         time.Duration

	// Error fields.
	ErrCategory Category
	ErrMessage  string

	// Notice is a transient user-visible message (e.g. a blank-query
	// validation hint) that does not change Status.
	Notice string

	// PendingText holds a captured voice transcript awaiting submission.
	PendingText string
}
