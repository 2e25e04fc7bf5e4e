// Package compare builds side-by-side product comparisons: deterministic
// pros and cons from catalog attributes plus an AI-written verdict.
package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/coderopp/smartneed/internal/domain"
)

// Comparison size bounds.
const (
	MinProducts = 2
	MaxProducts = 5
)

// Entry is one product's side of the comparison.
type Entry struct {
	Product domain.Product `json:"product"`
	Pros    []string       `json:"pros"`
	Cons    []string       `json:"cons"`
}

// Comparison is the full comparison result.
type Comparison struct {
	Entries []Entry `json:"entries"`
	Summary string  `json:"summary"`
}

// Service handles product comparisons.
type Service struct {
	products  ProductReader
	summarize Summarizer
}

// New creates a compare service.
func New(products ProductReader, summarizer Summarizer) *Service {
	return &Service{products: products, summarize: summarizer}
}

// Compare fetches the given products, derives pros and cons from their
// attributes, and asks the summarizer for a verdict. Any failure fails
// the whole comparison; there are no partial results.
func (s *Service) Compare(ctx context.Context, productIDs []string) (Comparison, error) {
	if len(productIDs) < MinProducts || len(productIDs) > MaxProducts {
		return Comparison{}, fmt.Errorf("%w: compare needs %d to %d product ids, got %d",
			domain.ErrInvalidQuery, MinProducts, MaxProducts, len(productIDs))
	}
	if err := checkDistinct(productIDs); err != nil {
		return Comparison{}, err
	}

	products := make([]domain.Product, 0, len(productIDs))
	for _, id := range productIDs {
		p, err := s.products.Get(ctx, id)
		if err != nil {
			return Comparison{}, err
		}
		products = append(products, p)
	}

	entries := buildEntries(products)

	summary, err := s.summarize.Summarize(ctx, buildPrompt(products))
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{Entries: entries, Summary: summary}, nil
}

func checkDistinct(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty product id", domain.ErrInvalidQuery)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate product id %s", domain.ErrInvalidQuery, id)
		}
		seen[id] = true
	}
	return nil
}

// buildEntries derives pros and cons relative to the comparison group.
func buildEntries(products []domain.Product) []Entry {
	lowestPrice, highestRating := products[0].Price, products[0].Rating
	for _, p := range products[1:] {
		if p.Price < lowestPrice {
			lowestPrice = p.Price
		}
		if p.Rating > highestRating {
			highestRating = p.Rating
		}
	}

	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		var pros, cons []string

		if p.Price == lowestPrice {
			pros = append(pros, "lowest price in comparison")
		}
		if p.Rating == highestRating && p.Rating > 0 {
			pros = append(pros, "highest rated in comparison")
		}
		if p.Discounted() {
			pros = append(pros, "currently discounted")
		}
		if p.ReviewCount >= 100 {
			pros = append(pros, "well reviewed")
		}

		if !p.InStock {
			cons = append(cons, "out of stock")
		}
		if p.Rating > 0 && p.Rating < 3.5 {
			cons = append(cons, "below-average rating")
		}
		if p.ReviewCount < 10 {
			cons = append(cons, "few reviews")
		}

		entries = append(entries, Entry{Product: p, Pros: pros, Cons: cons})
	}
	return entries
}

func buildPrompt(products []domain.Product) string {
	var b strings.Builder
	b.WriteString("Compare the following products and recommend which to buy and for whom:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		if p.Brand != "" {
			fmt.Fprintf(&b, " by %s", p.Brand)
		}
		fmt.Fprintf(&b, " — %.2f %s", p.Price, p.Currency)
		if p.Rating > 0 {
			fmt.Fprintf(&b, ", rated %.1f/5 (%d reviews)", p.Rating, p.ReviewCount)
		}
		if !p.InStock {
			b.WriteString(", out of stock")
		}
		if p.Description != "" {
			fmt.Fprintf(&b, ". %s", p.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
