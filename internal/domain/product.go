package domain

import (
	"fmt"
	"strings"
)

// MaxNameLength bounds product names as stored.
const MaxNameLength = 500

// Product is a catalog record as written by the ingestion pipeline.
// The search path treats products as read-only.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand,omitempty"`
	Category      string   `json:"category,omitempty"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price,omitempty"`
	Currency      string   `json:"currency"`
	Rating        float64  `json:"rating,omitempty"`
	ReviewCount   int      `json:"review_count"`
	ImageURL      string   `json:"image_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	Source        string   `json:"source"`
	SourceURL     string   `json:"source_url,omitempty"`
	InStock       bool     `json:"in_stock"`
	Tags          []string `json:"tags,omitempty"`
}

// Validate checks the product invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("product id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if len(p.Name) > MaxNameLength {
		return fmt.Errorf("product name too long (max %d chars)", MaxNameLength)
	}
	if p.Source == "" {
		return fmt.Errorf("product source is required")
	}
	if p.Price < 0 {
		return fmt.Errorf("price must be non-negative, got %g", p.Price)
	}
	if p.OriginalPrice != 0 && p.OriginalPrice < p.Price {
		return fmt.Errorf("original_price %g is below price %g", p.OriginalPrice, p.Price)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5, got %g", p.Rating)
	}
	if p.ReviewCount < 0 {
		return fmt.Errorf("review_count must be non-negative, got %d", p.ReviewCount)
	}
	return nil
}

// Discounted reports whether the product currently sells below its original price.
func (p *Product) Discounted() bool {
	return p.OriginalPrice > p.Price && p.Price > 0
}

// SearchableText builds the text that gets embedded for this product.
func (p *Product) SearchableText() string {
	parts := make([]string, 0, 5)
	parts = append(parts, p.Name)
	if p.Brand != "" {
		parts = append(parts, p.Brand)
	}
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if len(p.Tags) > 0 {
		parts = append(parts, strings.Join(p.Tags, " "))
	}
	return strings.Join(parts, " ")
}
