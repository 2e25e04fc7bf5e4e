package compare

import (
	"context"

	"github.com/coderopp/smartneed/internal/domain"
)

// ProductReader fetches products for comparison.
type ProductReader interface {
	Get(ctx context.Context, id string) (domain.Product, error)
}

// Summarizer produces the free-text comparison verdict.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
