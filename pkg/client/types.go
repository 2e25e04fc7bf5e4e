package client

import (
	"time"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/result"
)

// Filters is the structural pre-filter set, re-exported for callers.
type Filters = filter.Set

// Result is a single search hit, re-exported for callers.
type Result = result.Result

// Page is a search response, re-exported for callers.
type Page = result.Page

// Product is a catalog record, re-exported for callers.
type Product = domain.Product

// SearchRequest are the search call parameters. Zero MinSimilarity
// selects the service default; set a pointer for an explicit floor.
type SearchRequest struct {
	Query         string   `json:"query"`
	Filters       Filters  `json:"filters,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Offset        int      `json:"offset,omitempty"`
	MinSimilarity *float64 `json:"min_similarity,omitempty"`
}

// QueryCount is a query with its popularity score.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// SearchMetrics aggregates the service's search log.
type SearchMetrics struct {
	TotalSearches  int64        `json:"total_searches"`
	UniqueQueries  int64        `json:"unique_queries"`
	PopularQueries []QueryCount `json:"popular_queries"`
}

// ProductPage is a filtered catalog listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// ProductStats aggregates the catalog.
type ProductStats struct {
	TotalProducts int            `json:"total_products"`
	ByCategory    map[string]int `json:"by_category"`
	BySource      map[string]int `json:"by_source"`
}

// CompareEntry is one product's side of a comparison.
type CompareEntry struct {
	Product Product  `json:"product"`
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
}

// Comparison is a full comparison result.
type Comparison struct {
	Entries []CompareEntry `json:"entries"`
	Summary string         `json:"summary"`
}

// Health is the service health report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// searchWire is the raw search response body.
type searchWire struct {
	QueryID      string   `json:"query_id"`
	Results      []Result `json:"results"`
	TotalMatches int      `json:"total_matches"`
	TookMs       int64    `json:"took_ms"`
	Degraded     bool     `json:"degraded"`
}

func (w *searchWire) toPage() Page {
	return Page{
		QueryID:      w.QueryID,
		Results:      w.Results,
		TotalMatches: w.TotalMatches,
		Took:         time.Duration(w.TookMs) * time.Millisecond,
		Degraded:     w.Degraded,
	}
}
