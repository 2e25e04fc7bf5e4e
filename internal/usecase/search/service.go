// Package search implements the product discovery flow: embed the query,
// pre-filter and rank candidates, annotate match reasons, and log the
// search for popularity-derived reads.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/query"
	"github.com/coderopp/smartneed/internal/domain/search/result"
	"github.com/coderopp/smartneed/internal/metrics"
	"github.com/coderopp/smartneed/internal/repository/feedback"
	"github.com/coderopp/smartneed/internal/repository/history"
	"github.com/coderopp/smartneed/internal/repository/product"
)

const (
	// DefaultSuggestLimit bounds autocomplete responses.
	DefaultSuggestLimit = 10
	// MaxSuggestLimit is the hard cap on autocomplete responses.
	MaxSuggestLimit = 20

	recordTimeout = 2 * time.Second
	popularTopN   = 10
)

// Config tunes search execution.
type Config struct {
	// EmbedTimeout bounds the embedding call.
	EmbedTimeout time.Duration
	// StoreTimeout bounds each store query.
	StoreTimeout time.Duration
	// DegradeToKeyword falls back to BM25 keyword ranking when the
	// embedding provider fails, marking the page Degraded.
	DegradeToKeyword bool
}

// Params are the raw, unvalidated search inputs.
type Params struct {
	Text          string
	Filters       filter.Set
	Limit         int
	Offset        int
	MinSimilarity float64
}

// Service handles product search.
type Service struct {
	products ProductRepository
	history  HistoryRepository
	feedback FeedbackRepository
	embed    Embedder
	cfg      Config
	logger   *zap.Logger
	newID    func() string
}

// New creates a search service.
func New(
	products ProductRepository,
	hist HistoryRepository,
	fb FeedbackRepository,
	embed Embedder,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		products: products,
		history:  hist,
		feedback: fb,
		embed:    embed,
		cfg:      cfg,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Search runs the full discovery flow and returns a complete page or a
// typed error, never a silent partial.
func (s *Service) Search(ctx context.Context, p Params) (result.Page, error) {
	start := time.Now()

	q, err := query.New(p.Text, p.Filters, p.Limit, p.Offset, p.MinSimilarity)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Page{}, err
	}

	emb, total, degraded, err := s.prepare(ctx, &q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Page{}, err
	}

	results, err := s.rank(ctx, &q, emb, degraded)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return result.Page{}, err
	}

	took := time.Since(start)
	s.recordAsync(q.Text(), len(results), took)

	status := "ok"
	if degraded {
		status = "degraded"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchResultsReturned.Observe(float64(len(results)))

	return result.Page{
		QueryID:      s.newID(),
		Results:      results,
		TotalMatches: total,
		Took:         took,
		Degraded:     degraded,
	}, nil
}

// prepare concurrently embeds the query and counts structural matches.
// On embedding failure with DegradeToKeyword on, it returns a nil vector
// and degraded=true instead of an error, except for rate limits, which
// always surface.
func (s *Service) prepare(ctx context.Context, q *query.Query) (
	vector []float32, total int, degraded bool, err error,
) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ectx, cancel := context.WithTimeout(gctx, s.cfg.EmbedTimeout)
		defer cancel()

		emb, embErr := s.embed.Embed(ectx, q.Text())
		if embErr != nil {
			// Rate limits always propagate: the caller should back
			// off, not silently get keyword-quality results.
			if s.cfg.DegradeToKeyword && !errors.Is(embErr, domain.ErrRateLimited) {
				s.logger.Warn("Embedding failed, degrading to keyword search",
					zap.Error(embErr))
				degraded = true
				return nil
			}
			return wrapEmbed(embErr)
		}
		vector = emb.Embedding
		return nil
	})

	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, s.cfg.StoreTimeout)
		defer cancel()

		n, countErr := s.products.Count(sctx, q.Filters())
		if countErr != nil {
			return wrapStore(countErr)
		}
		total = n
		return nil
	})

	if werr := g.Wait(); werr != nil {
		return nil, 0, false, werr
	}
	return vector, total, degraded, nil
}

// rank retrieves candidates (KNN or keyword fallback), applies the score
// floor, and orders results deterministically.
func (s *Service) rank(
	ctx context.Context, q *query.Query, vector []float32, degraded bool,
) ([]result.Result, error) {
	sctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	// Fetch past the page so the threshold filter does not starve it.
	k := (q.Offset() + q.Limit()) * 2

	var (
		candidates []product.Candidate
		err        error
	)
	if degraded {
		candidates, err = s.products.Keyword(sctx, q.Text(), q.Filters(), k)
	} else {
		candidates, err = s.products.KNN(sctx, vector, q.Filters(), k)
	}
	if err != nil {
		return nil, wrapStore(err)
	}

	filters := q.Filters()
	results := make([]result.Result, 0, len(candidates))
	for _, c := range candidates {
		score := result.ClampScore(c.Score)
		if score < q.MinSimilarity() {
			continue
		}
		results = append(results, result.Result{
			Product:         c.Product,
			SimilarityScore: score,
			MatchReasons:    matchReasons(&c.Product, score, filters),
		})
	}

	results = result.Dedupe(results)
	result.Sort(results)
	return page(results, q.Offset(), q.Limit()), nil
}

// Autocomplete suggests popular queries matching the partial input. No
// AI call is involved.
func (s *Service) Autocomplete(ctx context.Context, partial string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	if limit > MaxSuggestLimit {
		limit = MaxSuggestLimit
	}
	suggestions, err := s.history.Suggest(ctx, partial, limit)
	if err != nil {
		return nil, wrapStore(err)
	}
	return suggestions, nil
}

// SubmitFeedback stores a relevance signal for a returned result. The
// first signal per (queryID, productID) pair wins.
func (s *Service) SubmitFeedback(
	ctx context.Context, queryID, productID string, signal feedback.Signal,
) (accepted bool, err error) {
	return s.feedback.Submit(ctx, queryID, productID, signal)
}

// Similar finds products nearest to an existing product's embedding.
func (s *Service) Similar(ctx context.Context, productID string, limit int) ([]result.Result, error) {
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}

	vector, err := s.products.Vector(ctx, productID)
	if err != nil {
		return nil, err
	}

	// +1 because the product itself is its own nearest neighbor.
	candidates, err := s.products.KNN(ctx, vector, filter.Set{}, limit+1)
	if err != nil {
		return nil, wrapStore(err)
	}

	results := make([]result.Result, 0, limit)
	for _, c := range candidates {
		if c.Product.ID == productID {
			continue
		}
		score := result.ClampScore(c.Score)
		results = append(results, result.Result{
			Product:         c.Product,
			SimilarityScore: score,
			MatchReasons:    matchReasons(&c.Product, score, filter.Set{}),
		})
	}

	results = result.Dedupe(results)
	result.Sort(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Popular returns the all-time top queries.
func (s *Service) Popular(ctx context.Context, limit int) ([]history.QueryCount, error) {
	if limit <= 0 {
		limit = popularTopN
	}
	return s.history.Popular(ctx, limit)
}

// Trending returns recently popular queries.
func (s *Service) Trending(ctx context.Context, limit int) ([]history.QueryCount, error) {
	if limit <= 0 {
		limit = popularTopN
	}
	return s.history.Trending(ctx, limit)
}

// Metrics returns aggregate search analytics.
func (s *Service) Metrics(ctx context.Context) (history.Metrics, error) {
	return s.history.Stats(ctx, popularTopN)
}

// recordAsync logs the search without blocking or failing the response.
func (s *Service) recordAsync(text string, results int, took time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.history.Record(ctx, text, results, took); err != nil {
			s.logger.Warn("Failed to record search history", zap.Error(err))
		}
	}()
}

func page(results []result.Result, offset, limit int) []result.Result {
	if offset >= len(results) {
		return []result.Result{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// wrapEmbed types an embedding failure unless it already carries a
// domain sentinel (rate limiting stays distinguishable).
func wrapEmbed(err error) error {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrRateLimited) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
}

func wrapStore(err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
