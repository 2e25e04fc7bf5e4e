package session

import (
	"context"

	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/result"
	"github.com/coderopp/smartneed/pkg/client"
)

// ClientSearcher adapts a SmartNeed API client to the Searcher
// interface, fixing the page size for all session queries.
type ClientSearcher struct {
	Client        *client.Client
	Limit         int
	MinSimilarity *float64
}

func (c ClientSearcher) Search(
	ctx context.Context, text string, filters filter.Set,
) (result.Page, error) {
	return c.Client.Search(ctx, client.SearchRequest{
		Query:         text,
		Filters:       filters,
		Limit:         c.Limit,
		MinSimilarity: c.MinSimilarity,
	})
}
