package product

import (
	"context"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
)

// Repository defines the storage contract for catalog reads.
type Repository interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, filters filter.Set, offset, limit int) ([]domain.Product, int, error)
	Count(ctx context.Context, filters filter.Set) (int, error)
	CountBy(ctx context.Context, field string) (map[string]int, error)
}
