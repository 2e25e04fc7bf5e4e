package search

import (
	"context"
	"time"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/repository/feedback"
	"github.com/coderopp/smartneed/internal/repository/history"
	"github.com/coderopp/smartneed/internal/repository/product"
)

// ProductRepository defines the storage contract for search operations.
type ProductRepository interface {
	KNN(ctx context.Context, vector []float32, filters filter.Set, k int) ([]product.Candidate, error)
	Keyword(ctx context.Context, text string, filters filter.Set, k int) ([]product.Candidate, error)
	Count(ctx context.Context, filters filter.Set) (int, error)
	Vector(ctx context.Context, id string) ([]float32, error)
}

// HistoryRepository records searches and serves popularity reads.
type HistoryRepository interface {
	Record(ctx context.Context, query string, results int, took time.Duration) error
	Suggest(ctx context.Context, prefix string, limit int) ([]string, error)
	Popular(ctx context.Context, limit int) ([]history.QueryCount, error)
	Trending(ctx context.Context, limit int) ([]history.QueryCount, error)
	Stats(ctx context.Context, topN int) (history.Metrics, error)
}

// FeedbackRepository stores per-result relevance signals.
type FeedbackRepository interface {
	Submit(ctx context.Context, queryID, productID string, signal feedback.Signal) (bool, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
