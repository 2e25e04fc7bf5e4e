package db

import "github.com/coderopp/smartneed/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Set
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for keyword (BM25) search.
type TextQuery struct {
	IndexName    string
	Query        string
	Filters      filter.Set
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
