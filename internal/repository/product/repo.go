// Package product persists catalog records and serves filtered and
// vector-similarity retrieval over them.
package product

import (
	"context"
	"fmt"

	"github.com/coderopp/smartneed/internal/db"
	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
)

// IndexName is the FT index over product hashes.
const IndexName = domain.KeyPrefix + "products:idx"

const keyPrefix = domain.KeyPrefix + "product:"

// store is the consumer interface for product persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index string, filters filter.Set, offset, limit int) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, filters filter.Set) (int, error)
	GroupCount(ctx context.Context, index, field string) (map[string]int, error)
}

// Candidate is a product hit with its similarity score.
type Candidate struct {
	Product domain.Product
	Score   float64
}

// HNSWConfig carries index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements product retrieval over the db facade.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a product repository.
func New(s store, vectorDim int) *Repo {
	return &Repo{store: s, vectorDim: vectorDim}
}

// WithHNSW sets HNSW build parameters for EnsureIndex.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	r.hnsw = cfg
	return r
}

// EnsureIndex creates the product FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("%w: check index: %w", domain.ErrStoreUnavailable, err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     IndexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{Name: fieldCategory, Type: db.IndexFieldTag},
			{Name: fieldBrand, Type: db.IndexFieldTag},
			{Name: fieldSource, Type: db.IndexFieldTag},
			{Name: fieldInStock, Type: db.IndexFieldTag},
			{Name: fieldPrice, Type: db.IndexFieldNumeric},
			{Name: fieldRating, Type: db.IndexFieldNumeric},
			{Name: fieldText, Type: db.IndexFieldText},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         r.vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("%w: create index: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Upsert writes a product and its embedding. Used by the ingestion
// pipeline; the search path never calls it.
func (r *Repo) Upsert(ctx context.Context, p *domain.Product, vector []float32) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidQuery, err)
	}
	if len(vector) > 0 && len(vector) != r.vectorDim {
		return fmt.Errorf("%w: vector dim %d, want %d", domain.ErrInvalidQuery, len(vector), r.vectorDim)
	}
	if err := r.store.HSet(ctx, keyPrefix+p.ID, toFields(p, vector)); err != nil {
		return fmt.Errorf("%w: upsert product %s: %w", domain.ErrStoreUnavailable, p.ID, err)
	}
	return nil
}

// Delete removes a product record. The FT index drops the document on
// key deletion.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, keyPrefix+id); err != nil {
		return fmt.Errorf("%w: delete product %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	return nil
}

// Get fetches a product by its identifier.
func (r *Repo) Get(ctx context.Context, id string) (domain.Product, error) {
	fields, err := r.store.HGetAll(ctx, keyPrefix+id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: get product %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	if len(fields) == 0 {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return fromFields(fields), nil
}

// Vector fetches the stored embedding of a product.
func (r *Repo) Vector(ctx context.Context, id string) ([]float32, error) {
	fields, err := r.store.HGetAll(ctx, keyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("%w: get product %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	vec := bytesToVector(fields[fieldVector])
	if vec == nil {
		return nil, fmt.Errorf("%w: product %s has no embedding", domain.ErrProductNotFound, id)
	}
	return vec, nil
}

// KNN retrieves the k nearest products to the query vector, pre-filtered
// by the structural filter set. Scores are cosine similarity in [0,1].
func (r *Repo) KNN(ctx context.Context, vector []float32, filters filter.Set, k int) ([]Candidate, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrStoreUnavailable, err)
	}
	return toCandidates(sr), nil
}

// Keyword retrieves products matching the query text (BM25), pre-filtered
// by the structural filter set. BM25 scores are normalized to (0,1].
func (r *Repo) Keyword(ctx context.Context, text string, filters filter.Set, k int) ([]Candidate, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    IndexName,
		Query:        text,
		Filters:      filters,
		TopK:         k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: keyword search: %w", domain.ErrStoreUnavailable, err)
	}

	candidates := toCandidates(sr)
	for i := range candidates {
		// BM25 scores are unbounded; squash into (0,1] so both search
		// paths share the similarity contract.
		candidates[i].Score = candidates[i].Score / (1 + candidates[i].Score)
	}
	return candidates, nil
}

// Count returns the number of products matching the structural filters.
func (r *Repo) Count(ctx context.Context, filters filter.Set) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName, filters)
	if err != nil {
		return 0, fmt.Errorf("%w: count products: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

// List returns a filtered product page plus the total match count.
func (r *Repo) List(ctx context.Context, filters filter.Set, offset, limit int) ([]domain.Product, int, error) {
	sr, err := r.store.SearchList(ctx, IndexName, filters, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list products: %w", domain.ErrStoreUnavailable, err)
	}

	products := make([]domain.Product, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		products = append(products, fromFields(e.Fields))
	}
	return products, sr.Total, nil
}

// CountBy returns per-value product counts for a tag field (category, source, brand).
func (r *Repo) CountBy(ctx context.Context, field string) (map[string]int, error) {
	counts, err := r.store.GroupCount(ctx, IndexName, field)
	if err != nil {
		return nil, fmt.Errorf("%w: count by %s: %w", domain.ErrStoreUnavailable, field, err)
	}
	return counts, nil
}

func toCandidates(sr *db.SearchResult) []Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	candidates := make([]Candidate, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		candidates = append(candidates, Candidate{
			Product: fromFields(e.Fields),
			Score:   e.Score,
		})
	}
	return candidates
}
