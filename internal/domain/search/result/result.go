// Package result defines search hits and the response page.
package result

import (
	"sort"
	"time"

	"github.com/coderopp/smartneed/internal/domain"
)

// Result is a single search hit: a product plus its similarity score and
// the human-readable reasons it matched.
type Result struct {
	Product         domain.Product `json:"product"`
	SimilarityScore float64        `json:"similarity_score"`
	MatchReasons    []string       `json:"match_reasons"`
}

// Page is a complete search response.
type Page struct {
	QueryID      string        `json:"query_id"`
	Results      []Result      `json:"results"`
	TotalMatches int           `json:"total_matches"`
	Took         time.Duration `json:"-"`
	Degraded     bool          `json:"degraded,omitempty"`
}

// Sort orders results by similarity score descending, breaking ties by
// rating descending, then product ID ascending for determinism.
func Sort(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		if a.Product.Rating != b.Product.Rating {
			return a.Product.Rating > b.Product.Rating
		}
		return a.Product.ID < b.Product.ID
	})
}

// Dedupe removes results sharing a product ID, keeping the first
// occurrence. The input order is preserved.
func Dedupe(results []Result) []Result {
	seen := make(map[string]bool, len(results))
	out := results[:0]
	for _, r := range results {
		if seen[r.Product.ID] {
			continue
		}
		seen[r.Product.ID] = true
		out = append(out, r)
	}
	return out
}

// ClampScore forces a score into [0,1].
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
