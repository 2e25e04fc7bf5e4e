// Package client is a thin HTTP client for the SmartNeed search API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to a SmartNeed API server.
type Client struct {
	baseURL string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search runs a product search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (Page, error) {
	var wire searchWire
	if err := c.do(ctx, http.MethodPost, "/api/v1/search", nil, req, &wire); err != nil {
		return Page{}, err
	}
	return wire.toPage(), nil
}

// Autocomplete suggests popular queries for a partial input.
func (c *Client) Autocomplete(ctx context.Context, partial string, limit int) ([]string, error) {
	q := url.Values{"q": {partial}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/search/autocomplete", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Suggestions, nil
}

// Popular returns the all-time top queries.
func (c *Client) Popular(ctx context.Context, limit int) ([]QueryCount, error) {
	return c.queryList(ctx, "/api/v1/search/popular", limit)
}

// Trending returns recently popular queries.
func (c *Client) Trending(ctx context.Context, limit int) ([]QueryCount, error) {
	return c.queryList(ctx, "/api/v1/search/trending", limit)
}

func (c *Client) queryList(ctx context.Context, path string, limit int) ([]QueryCount, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Queries []QueryCount `json:"queries"`
	}
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Queries, nil
}

// Metrics returns aggregate search analytics.
func (c *Client) Metrics(ctx context.Context) (SearchMetrics, error) {
	var m SearchMetrics
	err := c.do(ctx, http.MethodGet, "/api/v1/search/metrics", nil, nil, &m)
	return m, err
}

// SubmitFeedback reports a relevance signal for a search result.
// signal is one of "relevant", "irrelevant", "purchased".
func (c *Client) SubmitFeedback(ctx context.Context, queryID, productID, signal string) (bool, error) {
	body := map[string]string{
		"query_id":   queryID,
		"product_id": productID,
		"signal":     signal,
	}
	var resp struct {
		Accepted bool `json:"accepted"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/search/feedback", nil, body, &resp); err != nil {
		return false, err
	}
	return resp.Accepted, nil
}

// Similar finds products nearest to an existing product.
func (c *Client) Similar(ctx context.Context, productID string, limit int) ([]Result, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Results []Result `json:"results"`
	}
	path := "/api/v1/search/similar/" + url.PathEscape(productID)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetProduct fetches one product by ID.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	err := c.do(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), nil, nil, &p)
	return p, err
}

// ListProducts returns a filtered catalog page.
func (c *Client) ListProducts(ctx context.Context, filters Filters, offset, limit int) (ProductPage, error) {
	q := url.Values{}
	if filters.MinPrice != nil {
		q.Set("min_price", formatFloat(*filters.MinPrice))
	}
	if filters.MaxPrice != nil {
		q.Set("max_price", formatFloat(*filters.MaxPrice))
	}
	if filters.MinRating != nil {
		q.Set("min_rating", formatFloat(*filters.MinRating))
	}
	if filters.Category != "" {
		q.Set("category", filters.Category)
	}
	if filters.Brand != "" {
		q.Set("brand", filters.Brand)
	}
	if filters.Source != "" {
		q.Set("source", filters.Source)
	}
	if filters.InStockOnly {
		q.Set("in_stock_only", "true")
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var page ProductPage
	err := c.do(ctx, http.MethodGet, "/api/v1/products", q, nil, &page)
	return page, err
}

// ProductStats returns catalog-wide counts.
func (c *Client) ProductStats(ctx context.Context) (ProductStats, error) {
	var s ProductStats
	err := c.do(ctx, http.MethodGet, "/api/v1/products/stats", nil, nil, &s)
	return s, err
}

// Compare compares 2 to 5 products by ID.
func (c *Client) Compare(ctx context.Context, productIDs []string) (Comparison, error) {
	body := map[string][]string{"product_ids": productIDs}
	var cmp Comparison
	err := c.do(ctx, http.MethodPost, "/api/v1/compare", nil, body, &cmp)
	return cmp, err
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h)
	return h, err
}

func (c *Client) do(
	ctx context.Context, method, path string, query url.Values, body, out any,
) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("smartneed: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("smartneed: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("smartneed: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("smartneed: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Code = "internal_error"
		apiErr.Message = resp.Status
	}
	return apiErr
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
