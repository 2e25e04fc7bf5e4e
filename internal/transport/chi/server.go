// Package chi exposes the HTTP API: search, catalog reads, comparisons,
// feedback, and operational endpoints.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/coderopp/smartneed/internal/domain"
	"github.com/coderopp/smartneed/internal/repository/feedback"
	comparuc "github.com/coderopp/smartneed/internal/usecase/compare"
	healthuc "github.com/coderopp/smartneed/internal/usecase/health"
	productuc "github.com/coderopp/smartneed/internal/usecase/product"
	searchuc "github.com/coderopp/smartneed/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the use case services over HTTP.
type Server struct {
	search        *searchuc.Service
	products      *productuc.Service
	compare       *comparuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	products *productuc.Service,
	compare *comparuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		products: products,
		compare:  compare,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationError),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusBadGateway, codeEmbeddingUnavailable),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes mounts all API routes on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Get("/search/autocomplete", s.Autocomplete)
		r.Get("/search/popular", s.Popular)
		r.Get("/search/trending", s.Trending)
		r.Get("/search/metrics", s.SearchMetrics)
		r.Post("/search/feedback", s.SubmitFeedback)
		r.Get("/search/similar/{id}", s.Similar)
		r.Get("/products", s.ListProducts)
		r.Get("/products/stats", s.ProductStats)
		r.Get("/products/{id}", s.GetProduct)
		r.Post("/compare", s.Compare)
	})
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "Invalid request body: "+err.Error())
		return
	}

	minSimilarity := -1.0 // default threshold
	if req.MinSimilarity != nil {
		minSimilarity = *req.MinSimilarity
	}

	page, err := s.search.Search(r.Context(), searchuc.Params{
		Text:          req.Query,
		Filters:       req.Filters.toDomain(),
		Limit:         req.Limit,
		Offset:        req.Offset,
		MinSimilarity: minSimilarity,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchPageToDTO(&page))
}

// Autocomplete handles GET /api/v1/search/autocomplete.
func (s *Server) Autocomplete(w http.ResponseWriter, r *http.Request) {
	partial := r.URL.Query().Get("q")

	suggestions, err := s.search.Autocomplete(r.Context(), partial, queryInt(r, "limit"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, autocompleteResponse{Suggestions: suggestions})
}

// Popular handles GET /api/v1/search/popular.
func (s *Server) Popular(w http.ResponseWriter, r *http.Request) {
	counts, err := s.search.Popular(r.Context(), queryInt(r, "limit"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryCountsToDTO(counts))
}

// Trending handles GET /api/v1/search/trending.
func (s *Server) Trending(w http.ResponseWriter, r *http.Request) {
	counts, err := s.search.Trending(r.Context(), queryInt(r, "limit"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryCountsToDTO(counts))
}

// SearchMetrics handles GET /api/v1/search/metrics.
func (s *Server) SearchMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := s.search.Metrics(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := searchMetricsResponse{
		TotalSearches:  m.TotalSearches,
		UniqueQueries:  m.UniqueQueries,
		PopularQueries: queryCountsToDTO(m.PopularQueries).Queries,
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitFeedback handles POST /api/v1/search/feedback.
func (s *Server) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "Invalid request body: "+err.Error())
		return
	}

	accepted, err := s.search.SubmitFeedback(
		r.Context(), req.QueryID, req.ProductID, feedback.Signal(req.Signal),
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, feedbackResponse{Accepted: accepted})
}

// Similar handles GET /api/v1/search/similar/{id}.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	results, err := s.search.Similar(r.Context(), id, queryInt(r, "limit"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": resultsToDTO(results)})
}

// GetProduct handles GET /api/v1/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListProducts handles GET /api/v1/products.
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	filters, err := filtersFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, err.Error())
		return
	}

	page, err := s.products.List(r.Context(), filters, queryInt(r, "offset"), queryInt(r, "limit"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if page.Products == nil {
		page.Products = []domain.Product{}
	}

	writeJSON(w, http.StatusOK, productListResponse{Products: page.Products, Total: page.Total})
}

// ProductStats handles GET /api/v1/products/stats.
func (s *Server) ProductStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.products.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToDTO(&stats))
}

// Compare handles POST /api/v1/compare.
func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationError, "Invalid request body: "+err.Error())
		return
	}

	comparison, err := s.compare.Compare(r.Context(), req.ProductIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comparisonToDTO(&comparison))
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrProductNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingUnavailable,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
