// Package product serves catalog reads: fetch by ID, filtered listing,
// and aggregate stats.
package product

import (
	"context"
	"fmt"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/query"
	repo "github.com/coderopp/smartneed/internal/repository/product"
)

// Stats aggregates the catalog.
type Stats struct {
	TotalProducts int
	ByCategory    map[string]int
	BySource      map[string]int
}

// Page is a filtered product listing.
type Page struct {
	Products []domain.Product
	Total    int
}

// Service handles catalog reads.
type Service struct {
	repo Repository
}

// New creates a product service.
func New(r Repository) *Service {
	return &Service{repo: r}
}

// Get fetches one product by ID.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", domain.ErrInvalidQuery)
	}
	return s.repo.Get(ctx, id)
}

// List returns a filtered catalog page.
func (s *Service) List(ctx context.Context, filters filter.Set, offset, limit int) (Page, error) {
	if err := filters.Validate(); err != nil {
		return Page{}, fmt.Errorf("%w: %s", domain.ErrInvalidQuery, err)
	}
	if offset < 0 {
		return Page{}, fmt.Errorf("%w: offset must be non-negative", domain.ErrInvalidQuery)
	}
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}

	products, total, err := s.repo.List(ctx, filters, offset, limit)
	if err != nil {
		return Page{}, err
	}
	return Page{Products: products, Total: total}, nil
}

// Stats returns catalog-wide counts.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, err := s.repo.Count(ctx, filter.Set{})
	if err != nil {
		return Stats{}, err
	}

	byCategory, err := s.repo.CountBy(ctx, repo.GroupFieldCategory)
	if err != nil {
		return Stats{}, err
	}

	bySource, err := s.repo.CountBy(ctx, repo.GroupFieldSource)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalProducts: total,
		ByCategory:    byCategory,
		BySource:      bySource,
	}, nil
}
