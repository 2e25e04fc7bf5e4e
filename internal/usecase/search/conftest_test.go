package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/repository/feedback"
	"github.com/coderopp/smartneed/internal/repository/history"
	"github.com/coderopp/smartneed/internal/repository/product"
)

type productRepoMock struct {
	knnFunc     func(ctx context.Context, vector []float32, filters filter.Set, k int) ([]product.Candidate, error)
	keywordFunc func(ctx context.Context, text string, filters filter.Set, k int) ([]product.Candidate, error)
	countFunc   func(ctx context.Context, filters filter.Set) (int, error)
	vectorFunc  func(ctx context.Context, id string) ([]float32, error)
}

func (m *productRepoMock) KNN(ctx context.Context, vector []float32, filters filter.Set, k int) ([]product.Candidate, error) {
	return m.knnFunc(ctx, vector, filters, k)
}

func (m *productRepoMock) Keyword(ctx context.Context, text string, filters filter.Set, k int) ([]product.Candidate, error) {
	return m.keywordFunc(ctx, text, filters, k)
}

func (m *productRepoMock) Count(ctx context.Context, filters filter.Set) (int, error) {
	return m.countFunc(ctx, filters)
}

func (m *productRepoMock) Vector(ctx context.Context, id string) ([]float32, error) {
	return m.vectorFunc(ctx, id)
}

type historyRepoMock struct {
	recordFunc   func(ctx context.Context, query string, results int, took time.Duration) error
	suggestFunc  func(ctx context.Context, prefix string, limit int) ([]string, error)
	popularFunc  func(ctx context.Context, limit int) ([]history.QueryCount, error)
	trendingFunc func(ctx context.Context, limit int) ([]history.QueryCount, error)
	statsFunc    func(ctx context.Context, topN int) (history.Metrics, error)
}

func (m *historyRepoMock) Record(ctx context.Context, query string, results int, took time.Duration) error {
	if m.recordFunc == nil {
		return nil
	}
	return m.recordFunc(ctx, query, results, took)
}

func (m *historyRepoMock) Suggest(ctx context.Context, prefix string, limit int) ([]string, error) {
	return m.suggestFunc(ctx, prefix, limit)
}

func (m *historyRepoMock) Popular(ctx context.Context, limit int) ([]history.QueryCount, error) {
	return m.popularFunc(ctx, limit)
}

func (m *historyRepoMock) Trending(ctx context.Context, limit int) ([]history.QueryCount, error) {
	return m.trendingFunc(ctx, limit)
}

func (m *historyRepoMock) Stats(ctx context.Context, topN int) (history.Metrics, error) {
	return m.statsFunc(ctx, topN)
}

type feedbackRepoMock struct {
	submitFunc func(ctx context.Context, queryID, productID string, signal feedback.Signal) (bool, error)
}

func (m *feedbackRepoMock) Submit(ctx context.Context, queryID, productID string, signal feedback.Signal) (bool, error) {
	return m.submitFunc(ctx, queryID, productID, signal)
}

type embedderMock struct {
	embedFunc func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *embedderMock) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFunc(ctx, text)
}

func defaultConfig() Config {
	return Config{
		EmbedTimeout: time.Second,
		StoreTimeout: time.Second,
	}
}

func newTestService(
	products *productRepoMock,
	hist *historyRepoMock,
	fb *feedbackRepoMock,
	embed *embedderMock,
	cfg Config,
) *Service {
	if hist == nil {
		hist = &historyRepoMock{}
	}
	svc := New(products, hist, fb, embed, cfg, zap.NewNop())
	svc.newID = func() string { return "test-query-id" }
	return svc
}

func okEmbedder(vec []float32) *embedderMock {
	return &embedderMock{
		embedFunc: func(context.Context, string) (domain.EmbeddingResult, error) {
			return domain.EmbeddingResult{Embedding: vec, TotalTokens: 7}, nil
		},
	}
}
