package search

import (
	"reflect"
	"testing"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
)

func TestMatchReasons(t *testing.T) {
	maxPrice := 100.0
	minRating := 4.0

	cases := []struct {
		name    string
		product domain.Product
		score   float64
		filters filter.Set
		want    []string
	}{
		{
			name:    "strong semantic only",
			product: domain.Product{},
			score:   0.9,
			want:    []string{"strong semantic match"},
		},
		{
			name:    "weak semantic band",
			product: domain.Product{},
			score:   0.75,
			want:    []string{"semantic match"},
		},
		{
			name:    "below semantic band yields no semantic reason",
			product: domain.Product{Price: 50},
			score:   0.6,
			filters: filter.Set{MaxPrice: &maxPrice},
			want:    []string{"within budget"},
		},
		{
			name:    "category matched case-insensitively",
			product: domain.Product{Category: "Shoes"},
			score:   0.5,
			filters: filter.Set{Category: "shoes"},
			want:    []string{"category match"},
		},
		{
			name: "capped at three in rule order",
			product: domain.Product{
				Category:      "shoes",
				Brand:         "acme",
				Price:         80,
				OriginalPrice: 120,
				Rating:        4.8,
				ReviewCount:   200,
				InStock:       true,
			},
			score: 0.95,
			filters: filter.Set{
				Category:    "shoes",
				Brand:       "acme",
				MaxPrice:    &maxPrice,
				MinRating:   &minRating,
				InStockOnly: true,
			},
			want: []string{"strong semantic match", "category match", "brand match"},
		},
		{
			name: "late rules reachable when early ones skip",
			product: domain.Product{
				Rating:      4.9,
				ReviewCount: 50,
				InStock:     true,
			},
			score:   0.4,
			filters: filter.Set{InStockOnly: true},
			want:    []string{"highly rated", "in stock"},
		},
		{
			name:    "no reasons at all",
			product: domain.Product{},
			score:   0.1,
			want:    []string{},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := matchReasons(&c.product, c.score, c.filters)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("reasons = %v, want %v", got, c.want)
			}
		})
	}
}

func TestMatchReasonsDeterministic(t *testing.T) {
	p := domain.Product{Category: "shoes", Rating: 4.7, ReviewCount: 30, InStock: true}
	f := filter.Set{Category: "shoes", InStockOnly: true}

	first := matchReasons(&p, 0.88, f)
	for i := 0; i < 10; i++ {
		if got := matchReasons(&p, 0.88, f); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic reasons: %v vs %v", got, first)
		}
	}
}
