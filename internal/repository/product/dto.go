package product

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/coderopp/smartneed/internal/domain"
)

// Hash field names for product records.
const (
	fieldID            = "id"
	fieldName          = "name"
	fieldBrand         = "brand"
	fieldCategory      = "category"
	fieldPrice         = "price"
	fieldOriginalPrice = "original_price"
	fieldCurrency      = "currency"
	fieldRating        = "rating"
	fieldReviewCount   = "review_count"
	fieldImageURL      = "image_url"
	fieldDescription   = "description"
	fieldSource        = "source"
	fieldSourceURL     = "source_url"
	fieldInStock       = "in_stock"
	fieldTags          = "tags"
	fieldText          = "text"
	fieldVector        = "vector"

	// GroupFieldCategory and GroupFieldSource are the indexed tag fields
	// CountBy can aggregate over.
	GroupFieldCategory = fieldCategory
	GroupFieldSource   = fieldSource
)

// returnFields lists the hash fields fetched by search queries.
// The vector stays behind: it is large and never rendered.
var returnFields = []string{
	fieldID, fieldName, fieldBrand, fieldCategory, fieldPrice,
	fieldOriginalPrice, fieldCurrency, fieldRating, fieldReviewCount,
	fieldImageURL, fieldDescription, fieldSource, fieldSourceURL,
	fieldInStock, fieldTags,
}

// toFields flattens a product and its embedding into hash fields.
func toFields(p *domain.Product, vector []float32) map[string]string {
	fields := map[string]string{
		fieldID:          p.ID,
		fieldName:        p.Name,
		fieldPrice:       formatFloat(p.Price),
		fieldCurrency:    p.Currency,
		fieldReviewCount: strconv.Itoa(p.ReviewCount),
		fieldSource:      p.Source,
		fieldInStock:     boolField(p.InStock),
		fieldText:        p.SearchableText(),
	}
	if p.Brand != "" {
		fields[fieldBrand] = p.Brand
	}
	if p.Category != "" {
		fields[fieldCategory] = p.Category
	}
	if p.OriginalPrice > 0 {
		fields[fieldOriginalPrice] = formatFloat(p.OriginalPrice)
	}
	if p.Rating > 0 {
		fields[fieldRating] = formatFloat(p.Rating)
	}
	if p.ImageURL != "" {
		fields[fieldImageURL] = p.ImageURL
	}
	if p.Description != "" {
		fields[fieldDescription] = p.Description
	}
	if p.SourceURL != "" {
		fields[fieldSourceURL] = p.SourceURL
	}
	if len(p.Tags) > 0 {
		fields[fieldTags] = strings.Join(p.Tags, ",")
	}
	if len(vector) > 0 {
		fields[fieldVector] = vectorToBytes(vector)
	}
	return fields
}

// fromFields rebuilds a product from hash fields.
func fromFields(fields map[string]string) domain.Product {
	p := domain.Product{
		ID:          fields[fieldID],
		Name:        fields[fieldName],
		Brand:       fields[fieldBrand],
		Category:    fields[fieldCategory],
		Currency:    fields[fieldCurrency],
		ImageURL:    fields[fieldImageURL],
		Description: fields[fieldDescription],
		Source:      fields[fieldSource],
		SourceURL:   fields[fieldSourceURL],
		InStock:     fields[fieldInStock] == "1",
	}
	p.Price = parseFloat(fields[fieldPrice])
	p.OriginalPrice = parseFloat(fields[fieldOriginalPrice])
	p.Rating = parseFloat(fields[fieldRating])
	if n, err := strconv.Atoi(fields[fieldReviewCount]); err == nil {
		p.ReviewCount = n
	}
	if tags := fields[fieldTags]; tags != "" {
		p.Tags = strings.Split(tags, ",")
	}
	return p
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
