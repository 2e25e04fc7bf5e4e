package chi

import (
	"context"
	"net/http/httptest"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/repository/feedback"
	"github.com/coderopp/smartneed/internal/repository/history"
	"github.com/coderopp/smartneed/internal/repository/product"
	comparuc "github.com/coderopp/smartneed/internal/usecase/compare"
	healthuc "github.com/coderopp/smartneed/internal/usecase/health"
	productuc "github.com/coderopp/smartneed/internal/usecase/product"
	searchuc "github.com/coderopp/smartneed/internal/usecase/search"
)

// fakeStore backs all repository contracts with an in-memory catalog so
// handler tests exercise the full stack below the router.
type fakeStore struct {
	products map[string]domain.Product
	scores   map[string]float64
	countErr error
	knnErr   error
}

func (f *fakeStore) KNN(_ context.Context, _ []float32, _ filter.Set, k int) ([]product.Candidate, error) {
	if f.knnErr != nil {
		return nil, f.knnErr
	}
	out := make([]product.Candidate, 0, len(f.products))
	for id, p := range f.products {
		out = append(out, product.Candidate{Product: p, Score: f.scores[id]})
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (f *fakeStore) Keyword(ctx context.Context, _ string, fs filter.Set, k int) ([]product.Candidate, error) {
	return f.KNN(ctx, nil, fs, k)
}

func (f *fakeStore) Count(_ context.Context, _ filter.Set) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.products), nil
}

func (f *fakeStore) Vector(_ context.Context, id string) ([]float32, error) {
	if _, ok := f.products[id]; !ok {
		return nil, domain.ErrProductNotFound
	}
	return []float32{1, 0}, nil
}

func (f *fakeStore) Get(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeStore) List(_ context.Context, _ filter.Set, offset, limit int) ([]domain.Product, int, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeStore) CountBy(_ context.Context, field string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, p := range f.products {
		switch field {
		case "category":
			counts[p.Category]++
		case "source":
			counts[p.Source]++
		}
	}
	return counts, nil
}

type fakeHistory struct {
	popular []history.QueryCount
}

func (f *fakeHistory) Record(context.Context, string, int, time.Duration) error { return nil }

func (f *fakeHistory) Suggest(_ context.Context, _ string, limit int) ([]string, error) {
	out := make([]string, 0, limit)
	for _, q := range f.popular {
		out = append(out, q.Query)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeHistory) Popular(context.Context, int) ([]history.QueryCount, error) {
	return f.popular, nil
}

func (f *fakeHistory) Trending(context.Context, int) ([]history.QueryCount, error) {
	return f.popular, nil
}

func (f *fakeHistory) Stats(context.Context, int) (history.Metrics, error) {
	return history.Metrics{
		TotalSearches:  int64(len(f.popular)),
		UniqueQueries:  int64(len(f.popular)),
		PopularQueries: f.popular,
	}, nil
}

type fakeFeedback struct {
	accepted bool
}

func (f *fakeFeedback) Submit(_ context.Context, queryID, productID string, signal feedback.Signal) (bool, error) {
	if queryID == "" || productID == "" || !signal.Valid() {
		return false, domain.ErrInvalidQuery
	}
	return f.accepted, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if f.err != nil {
		return domain.EmbeddingResult{}, f.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(context.Context, string) (string, error) {
	return f.summary, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	store      *fakeStore
	hist       *fakeHistory
	fb         *fakeFeedback
	embed      *fakeEmbedder
	summarizer *fakeSummarizer
	pinger     *fakePinger
}

func defaultEnv() *testEnv {
	return &testEnv{
		store: &fakeStore{
			products: map[string]domain.Product{
				"p-1": {
					ID: "p-1", Name: "Trail Runner", Category: "shoes",
					Price: 90, Currency: "USD", Rating: 4.6, ReviewCount: 50,
					Source: "shop", InStock: true,
				},
				"p-2": {
					ID: "p-2", Name: "Road Flyer", Category: "shoes",
					Price: 120, Currency: "USD", Rating: 4.2, ReviewCount: 30,
					Source: "shop", InStock: true,
				},
			},
			scores: map[string]float64{"p-1": 0.9, "p-2": 0.7},
		},
		hist:       &fakeHistory{popular: []history.QueryCount{{Query: "running shoes", Count: 12}}},
		fb:         &fakeFeedback{accepted: true},
		embed:      &fakeEmbedder{},
		summarizer: &fakeSummarizer{summary: "Pick the Trail Runner."},
		pinger:     &fakePinger{},
	}
}

func newTestServer(env *testEnv) *httptest.Server {
	logger := zap.NewNop()
	cfg := searchuc.Config{EmbedTimeout: time.Second, StoreTimeout: time.Second}

	searchSvc := searchuc.New(env.store, env.hist, env.fb, env.embed, cfg, logger)
	productSvc := productuc.New(env.store)
	compareSvc := comparuc.New(env.store, env.summarizer)
	healthSvc := healthuc.New(env.pinger, nil)

	srv := NewServer(searchSvc, productSvc, compareSvc, healthSvc, logger)

	r := chirouter.NewRouter()
	srv.Routes(r)
	return httptest.NewServer(r)
}
