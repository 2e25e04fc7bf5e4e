package search

import (
	"strings"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
)

// maxReasons caps how many match reasons a result carries.
const maxReasons = 3

// matchReasons derives human-readable reasons a product matched, in a
// fixed rule order so identical inputs always yield identical output.
func matchReasons(p *domain.Product, score float64, filters filter.Set) []string {
	reasons := make([]string, 0, maxReasons)

	add := func(reason string) bool {
		reasons = append(reasons, reason)
		return len(reasons) == maxReasons
	}

	switch {
	case score >= 0.85:
		if add("strong semantic match") {
			return reasons
		}
	case score >= 0.70:
		if add("semantic match") {
			return reasons
		}
	}

	if filters.Category != "" && strings.EqualFold(filters.Category, p.Category) {
		if add("category match") {
			return reasons
		}
	}
	if filters.Brand != "" && strings.EqualFold(filters.Brand, p.Brand) {
		if add("brand match") {
			return reasons
		}
	}
	if filters.MaxPrice != nil && p.Price <= *filters.MaxPrice {
		if add("within budget") {
			return reasons
		}
	}
	if p.Discounted() {
		if add("on sale") {
			return reasons
		}
	}
	if p.Rating >= 4.5 && p.ReviewCount >= 10 {
		if add("highly rated") {
			return reasons
		}
	}
	if filters.MinRating != nil && p.Rating >= *filters.MinRating {
		if add("meets rating floor") {
			return reasons
		}
	}
	if filters.InStockOnly && p.InStock {
		if add("in stock") {
			return reasons
		}
	}

	return reasons
}
