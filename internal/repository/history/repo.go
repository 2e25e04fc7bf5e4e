// Package history records executed searches and serves popularity-derived
// reads: autocomplete suggestions, popular and trending queries, and
// aggregate search metrics.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coderopp/smartneed/internal/db"
	"github.com/coderopp/smartneed/internal/domain"
)

const (
	popularKey    = domain.KeyPrefix + "popular_queries"
	countKey      = domain.KeyPrefix + "search_count"
	trendingKey   = domain.KeyPrefix + "trending:" // + UTC day
	logKeyPrefix  = domain.KeyPrefix + "search_log:"
	scanBreadth   = 200 // zset members inspected per suggestion query
	trendingDecay = 0.5 // weight of yesterday's bucket
)

type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	ZIncrBy(ctx context.Context, key, member string, delta float64) error
	ZTop(ctx context.Context, key string, count int) ([]db.ScoredMember, error)
	ZCard(ctx context.Context, key string) (int64, error)
}

// QueryCount is a query with its popularity score.
type QueryCount struct {
	Query string
	Count int
}

// Metrics aggregates the search log.
type Metrics struct {
	TotalSearches  int64
	UniqueQueries  int64
	PopularQueries []QueryCount
}

// Repo implements the search history log over the db facade.
type Repo struct {
	store store
	now   func() time.Time
	newID func() string
}

// New creates a history repository.
func New(s store) *Repo {
	return &Repo{
		store: s,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// Record logs one executed search: bumps the global counter, the
// popularity and trending sets, and appends a log entry.
func (r *Repo) Record(ctx context.Context, query string, results int, took time.Duration) error {
	norm := Normalize(query)
	if norm == "" {
		return nil
	}

	if err := r.store.IncrBy(ctx, countKey, 1); err != nil {
		return fmt.Errorf("%w: record search count: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.ZIncrBy(ctx, popularKey, norm, 1); err != nil {
		return fmt.Errorf("%w: record popularity: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.ZIncrBy(ctx, r.dayKey(0), norm, 1); err != nil {
		return fmt.Errorf("%w: record trending: %w", domain.ErrStoreUnavailable, err)
	}

	entry := map[string]string{
		"query":   query,
		"results": strconv.Itoa(results),
		"took_ms": strconv.FormatInt(took.Milliseconds(), 10),
		"ts":      r.now().UTC().Format(time.RFC3339),
	}
	if err := r.store.HSet(ctx, logKeyPrefix+r.newID(), entry); err != nil {
		return fmt.Errorf("%w: record log entry: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Suggest returns up to limit popular queries containing the prefix,
// most popular first. An empty prefix returns the overall top queries.
func (r *Repo) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	norm := Normalize(prefix)
	top, err := r.store.ZTop(ctx, popularKey, scanBreadth)
	if err != nil {
		return nil, fmt.Errorf("%w: load popular queries: %w", domain.ErrStoreUnavailable, err)
	}

	suggestions := make([]string, 0, limit)
	for _, m := range top {
		if norm != "" && !strings.Contains(m.Member, norm) {
			continue
		}
		suggestions = append(suggestions, m.Member)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions, nil
}

// Popular returns the all-time top queries by search count.
func (r *Repo) Popular(ctx context.Context, limit int) ([]QueryCount, error) {
	top, err := r.store.ZTop(ctx, popularKey, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: load popular queries: %w", domain.ErrStoreUnavailable, err)
	}
	return toQueryCounts(top), nil
}

// Trending returns the top queries of the current and previous UTC day,
// with yesterday's counts discounted.
func (r *Repo) Trending(ctx context.Context, limit int) ([]QueryCount, error) {
	today, err := r.store.ZTop(ctx, r.dayKey(0), scanBreadth)
	if err != nil {
		return nil, fmt.Errorf("%w: load trending queries: %w", domain.ErrStoreUnavailable, err)
	}
	yesterday, err := r.store.ZTop(ctx, r.dayKey(-1), scanBreadth)
	if err != nil {
		return nil, fmt.Errorf("%w: load trending queries: %w", domain.ErrStoreUnavailable, err)
	}

	merged := make(map[string]float64, len(today)+len(yesterday))
	for _, m := range today {
		merged[m.Member] += m.Score
	}
	for _, m := range yesterday {
		merged[m.Member] += m.Score * trendingDecay
	}

	counts := make([]db.ScoredMember, 0, len(merged))
	for member, score := range merged {
		counts = append(counts, db.ScoredMember{Member: member, Score: score})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Score != counts[j].Score {
			return counts[i].Score > counts[j].Score
		}
		return counts[i].Member < counts[j].Member
	})
	if len(counts) > limit {
		counts = counts[:limit]
	}
	return toQueryCounts(counts), nil
}

// Stats returns aggregate metrics over the search log.
func (r *Repo) Stats(ctx context.Context, topN int) (Metrics, error) {
	var m Metrics

	raw, err := r.store.Get(ctx, countKey)
	switch {
	case err == nil:
		if n, perr := strconv.ParseInt(string(raw), 10, 64); perr == nil {
			m.TotalSearches = n
		}
	case errors.Is(err, db.ErrKeyNotFound):
		// no searches yet
	default:
		return Metrics{}, fmt.Errorf("%w: load search count: %w", domain.ErrStoreUnavailable, err)
	}

	unique, err := r.store.ZCard(ctx, popularKey)
	if err != nil {
		return Metrics{}, fmt.Errorf("%w: count unique queries: %w", domain.ErrStoreUnavailable, err)
	}
	m.UniqueQueries = unique

	popular, err := r.Popular(ctx, topN)
	if err != nil {
		return Metrics{}, err
	}
	m.PopularQueries = popular
	return m, nil
}

// Normalize lowercases and collapses whitespace so popularity counts are
// keyed on the query's canonical form.
func Normalize(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func (r *Repo) dayKey(offsetDays int) string {
	return trendingKey + r.now().UTC().AddDate(0, 0, offsetDays).Format("2006-01-02")
}

func toQueryCounts(members []db.ScoredMember) []QueryCount {
	counts := make([]QueryCount, 0, len(members))
	for _, m := range members {
		counts = append(counts, QueryCount{Query: m.Member, Count: int(m.Score)})
	}
	return counts
}
