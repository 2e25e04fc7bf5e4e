package chi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
	"github.com/coderopp/smartneed/internal/domain/search/result"
	"github.com/coderopp/smartneed/internal/repository/history"
	comparuc "github.com/coderopp/smartneed/internal/usecase/compare"
	productuc "github.com/coderopp/smartneed/internal/usecase/product"
)

// Machine-readable error codes returned in error bodies.
const (
	codeValidationError      = "validation_error"
	codeRateLimited          = "rate_limited"
	codeEmbeddingUnavailable = "embedding_unavailable"
	codeStoreUnavailable     = "store_unavailable"
	codeNotFound             = "not_found"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type filterSet struct {
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	InStockOnly bool     `json:"in_stock_only,omitempty"`
	Source      string   `json:"source,omitempty"`
}

func (f *filterSet) toDomain() filter.Set {
	if f == nil {
		return filter.Set{}
	}
	return filter.Set{
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		Category:    f.Category,
		Brand:       f.Brand,
		MinRating:   f.MinRating,
		InStockOnly: f.InStockOnly,
		Source:      f.Source,
	}
}

// filtersFromQuery parses the structural filter set from URL query
// parameters (listing endpoint).
func filtersFromQuery(r *http.Request) (filter.Set, error) {
	q := r.URL.Query()
	var f filter.Set

	for name, dst := range map[string]**float64{
		"min_price":  &f.MinPrice,
		"max_price":  &f.MaxPrice,
		"min_rating": &f.MinRating,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter.Set{}, fmt.Errorf("invalid %s: %q", name, raw)
		}
		*dst = &v
	}

	f.Category = q.Get("category")
	f.Brand = q.Get("brand")
	f.Source = q.Get("source")
	f.InStockOnly = q.Get("in_stock_only") == "true"
	return f, nil
}

type searchRequest struct {
	Query         string     `json:"query"`
	Filters       *filterSet `json:"filters,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
	MinSimilarity *float64   `json:"min_similarity,omitempty"`
}

type searchResultItem struct {
	Product         domain.Product `json:"product"`
	SimilarityScore float64        `json:"similarity_score"`
	MatchReasons    []string       `json:"match_reasons"`
}

type searchResponse struct {
	QueryID      string             `json:"query_id"`
	Results      []searchResultItem `json:"results"`
	TotalMatches int                `json:"total_matches"`
	TookMs       int64              `json:"took_ms"`
	Degraded     bool               `json:"degraded,omitempty"`
}

func searchPageToDTO(p *result.Page) searchResponse {
	items := make([]searchResultItem, 0, len(p.Results))
	for _, r := range p.Results {
		items = append(items, searchResultItem{
			Product:         r.Product,
			SimilarityScore: r.SimilarityScore,
			MatchReasons:    r.MatchReasons,
		})
	}
	return searchResponse{
		QueryID:      p.QueryID,
		Results:      items,
		TotalMatches: p.TotalMatches,
		TookMs:       p.Took.Milliseconds(),
		Degraded:     p.Degraded,
	}
}

func resultsToDTO(results []result.Result) []searchResultItem {
	items := make([]searchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, searchResultItem{
			Product:         r.Product,
			SimilarityScore: r.SimilarityScore,
			MatchReasons:    r.MatchReasons,
		})
	}
	return items
}

type autocompleteResponse struct {
	Suggestions []string `json:"suggestions"`
}

type queryCountItem struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

type queryListResponse struct {
	Queries []queryCountItem `json:"queries"`
}

func queryCountsToDTO(counts []history.QueryCount) queryListResponse {
	items := make([]queryCountItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, queryCountItem{Query: c.Query, Count: c.Count})
	}
	return queryListResponse{Queries: items}
}

type searchMetricsResponse struct {
	TotalSearches  int64            `json:"total_searches"`
	UniqueQueries  int64            `json:"unique_queries"`
	PopularQueries []queryCountItem `json:"popular_queries"`
}

type feedbackRequest struct {
	QueryID   string `json:"query_id"`
	ProductID string `json:"product_id"`
	Signal    string `json:"signal"`
}

type feedbackResponse struct {
	Accepted bool `json:"accepted"`
}

type productListResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

type productStatsResponse struct {
	TotalProducts int            `json:"total_products"`
	ByCategory    map[string]int `json:"by_category"`
	BySource      map[string]int `json:"by_source"`
}

func statsToDTO(s *productuc.Stats) productStatsResponse {
	return productStatsResponse{
		TotalProducts: s.TotalProducts,
		ByCategory:    s.ByCategory,
		BySource:      s.BySource,
	}
}

type compareRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type compareEntry struct {
	Product domain.Product `json:"product"`
	Pros    []string       `json:"pros"`
	Cons    []string       `json:"cons"`
}

type compareResponse struct {
	Entries []compareEntry `json:"entries"`
	Summary string         `json:"summary"`
}

func comparisonToDTO(c *comparuc.Comparison) compareResponse {
	entries := make([]compareEntry, 0, len(c.Entries))
	for _, e := range c.Entries {
		entries = append(entries, compareEntry{
			Product: e.Product,
			Pros:    e.Pros,
			Cons:    e.Cons,
		})
	}
	return compareResponse{Entries: entries, Summary: c.Summary}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
