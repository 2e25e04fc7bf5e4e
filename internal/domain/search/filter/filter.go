// Package filter defines the structural pre-filter applied before
// similarity ranking.
package filter

import "fmt"

// Set is the structural filter portion of a search query. All fields are
// optional; nil numeric pointers mean "no bound".
type Set struct {
	MinPrice    *float64 `json:"min_price,omitempty"`
	MaxPrice    *float64 `json:"max_price,omitempty"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	MinRating   *float64 `json:"min_rating,omitempty"`
	InStockOnly bool     `json:"in_stock_only,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// Validate checks the filter invariants.
func (s *Set) Validate() error {
	if s.MinPrice != nil && *s.MinPrice < 0 {
		return fmt.Errorf("min_price must be non-negative")
	}
	if s.MaxPrice != nil && *s.MaxPrice < 0 {
		return fmt.Errorf("max_price must be non-negative")
	}
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
		return fmt.Errorf("min_price %g exceeds max_price %g", *s.MinPrice, *s.MaxPrice)
	}
	if s.MinRating != nil && (*s.MinRating < 0 || *s.MinRating > 5) {
		return fmt.Errorf("min_rating must be between 0 and 5")
	}
	return nil
}

// IsEmpty reports whether no structural constraint is set.
func (s *Set) IsEmpty() bool {
	return s.MinPrice == nil && s.MaxPrice == nil && s.Category == "" &&
		s.Brand == "" && s.MinRating == nil && !s.InStockOnly && s.Source == ""
}
