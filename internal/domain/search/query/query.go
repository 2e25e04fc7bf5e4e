// Package query defines the validated search query value object.
package query

import (
	"fmt"
	"strings"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 500
	DefaultLimit   = 20
	MaxLimit       = 100
	// DefaultMinSimilarity is the default score floor for returned results.
	DefaultMinSimilarity = 0.5
)

// Query is a validated search query.
type Query struct {
	text          string
	filters       filter.Set
	limit         int
	offset        int
	minSimilarity float64
}

// New validates and normalizes search parameters. The query text is
// trimmed; an empty result fails with domain.ErrInvalidQuery. limit
// defaults to 20, clamped to [1,100]. minSimilarity < 0 selects the
// default threshold.
func New(text string, filters filter.Set, limit, offset int, minSimilarity float64) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, fmt.Errorf("%w: query text is required", domain.ErrInvalidQuery)
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if err := filters.Validate(); err != nil {
		return Query{}, fmt.Errorf("%w: %s", domain.ErrInvalidQuery, err)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Query{}, fmt.Errorf("%w: offset must be non-negative", domain.ErrInvalidQuery)
	}
	if minSimilarity < 0 {
		minSimilarity = DefaultMinSimilarity
	}
	if minSimilarity > 1 {
		return Query{}, fmt.Errorf("%w: min_similarity must be between 0 and 1", domain.ErrInvalidQuery)
	}

	return Query{
		text:          text,
		filters:       filters,
		limit:         limit,
		offset:        offset,
		minSimilarity: minSimilarity,
	}, nil
}

// Text returns the trimmed query text.
func (q *Query) Text() string { return q.text }

// Filters returns the structural pre-filter set.
func (q *Query) Filters() filter.Set { return q.filters }

// Limit returns the maximum results to return.
func (q *Query) Limit() int { return q.limit }

// Offset returns the number of results to skip.
func (q *Query) Offset() int { return q.offset }

// MinSimilarity returns the similarity score floor.
func (q *Query) MinSimilarity() float64 { return q.minSimilarity }
