package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hukukai/lexcore/internal/domain"
	"github.com/hukukai/lexcore/internal/domain/category"
	domusage "github.com/hukukai/lexcore/internal/domain/usage"
	logpkg "github.com/hukukai/lexcore/internal/logger"
	advisoruc "github.com/hukukai/lexcore/internal/usecase/advisor"
	healthuc "github.com/hukukai/lexcore/internal/usecase/health"
	"github.com/hukukai/lexcore/internal/usecase/retrieval"
	"github.com/hukukai/lexcore/internal/usecase/rules"
	usageuc "github.com/hukukai/lexcore/internal/usecase/usage"
)

// Search result limits.
const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 50
)

// Embedding usage response headers.
const (
	HeaderEmbeddingTokens = "X-Embedding-Tokens"
	HeaderEmbeddingCache  = "X-Embedding-Cache"
)

// Server serves the lexcore HTTP API.
type Server struct {
	retrieval     *retrieval.Service
	rules         *rules.Engine
	advisor       *advisoruc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retrievalSvc *retrieval.Service,
	engine *rules.Engine,
	advisorSvc *advisoruc.Service,
	health *healthuc.Service,
	usage *usageuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		retrieval:     retrievalSvc,
		rules:         engine,
		advisor:       advisorSvc,
		health:        health,
		usage:         usage,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes mounts every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Get("/search/best", s.BestMatch)
		r.Post("/evaluate", s.Evaluate)
		r.Post("/analyze", s.Analyze)
		r.Get("/categories", s.ListCategories)
		r.Get("/usage", s.GetUsage)
	})
}

// Search handles GET /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, ok := s.bindSearchParams(w, r)
	if !ok {
		return
	}

	limit := DefaultSearchLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit < 1 || limit > MaxSearchLimit {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidParameter,
			fmt.Sprintf("limit must be between 1 and %d", MaxSearchLimit))
		return
	}

	ctx, usage := domain.WithQueryUsage(r.Context())
	results, backend := s.retrieval.Search(ctx, params.Q, derefString(params.Category))
	if len(results) > limit {
		results = results[:limit]
	}

	items := make([]SearchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToAPI(&results[i])
	}
	writeQueryUsage(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Backend: string(backend),
		Results: items,
	})
}

// BestMatch handles GET /v1/search/best.
func (s *Server) BestMatch(w http.ResponseWriter, r *http.Request) {
	params, ok := s.bindSearchParams(w, r)
	if !ok {
		return
	}
	ctx, usage := domain.WithQueryUsage(r.Context())
	summary := s.retrieval.BestMatchSummary(ctx, params.Q, derefString(params.Category))
	writeQueryUsage(w, usage)
	writeJSON(w, http.StatusOK, BestMatchResponse{Summary: summary})
}

// Evaluate handles POST /v1/evaluate.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		s.handleDomainError(w, r, fmt.Errorf("%w: category is required", domain.ErrInvalidInput))
		return
	}

	warnings := s.rules.Check(req.Category, req.Text, req.OCRText)
	msgs := make([]string, len(warnings))
	for i, wr := range warnings {
		msgs[i] = wr.Message
	}
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Warnings: warningsToAPI(warnings),
		Summary:  strings.Join(msgs, "\n"),
	})
}

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.WithQueryUsage(logpkg.WithCategory(r.Context(), req.Category))
	r = r.WithContext(ctx)
	report, err := s.advisor.Analyze(ctx, req.Category, req.Text, req.OCRText)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeQueryUsage(w, usage)
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Warnings:  warningsToAPI(report.Warnings),
		Reference: report.Reference,
		Context:   report.Context,
	})
}

// ListCategories handles GET /v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	all := category.All()
	items := make([]CategoryItem, len(all))
	for i, c := range all {
		items[i] = CategoryItem{
			ID:             c.ID,
			Title:          c.Title,
			Law:            c.Law,
			RequiredFields: c.RequiredFields,
		}
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: items})
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidParameter, fmt.Sprintf("invalid parameter period: %v", err))
		return
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	svc := s.usage
	if svc == nil {
		svc = usageuc.New(nil, nil)
	}
	report := svc.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, UsageResponse{
		Period:          string(report.Period()),
		PeriodStart:     report.Start().Format(time.RFC3339),
		PeriodEnd:       report.End().Format(time.RFC3339),
		TokensUsed:      report.TokensUsed(),
		TokensLimit:     report.TokensLimit(),
		TokensRemaining: report.TokensRemaining(),
		Unlimited:       report.Unlimited(),
		Exhausted:       report.Exhausted(),
	})
}

// HealthCheck handles GET /health. A degraded core still answers with the
// term-frequency backend, so only a missing health service yields 503.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeInternalError, "health service unavailable")
		return
	}
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
		Vectors:   report.Vectors,
		Backend:   string(s.retrieval.Backend()),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) bindSearchParams(w http.ResponseWriter, r *http.Request) (SearchParams, bool) {
	var params SearchParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", query, &params.Q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidParameter, fmt.Sprintf("invalid parameter q: %v", err))
		return params, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", query, &params.Category); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidParameter,
			fmt.Sprintf("invalid parameter category: %v", err))
		return params, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidParameter, fmt.Sprintf("invalid parameter limit: %v", err))
		return params, false
	}
	return params, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContext(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// writeQueryUsage reports the embedding cost of a retrieval request. Requests
// served by term frequency alone carry no headers.
func writeQueryUsage(w http.ResponseWriter, u *domain.QueryUsage) {
	if !u.Embedded() {
		return
	}
	cache := "miss"
	if u.CacheHits() > 0 {
		cache = "hit"
	}
	w.Header().Set(HeaderEmbeddingTokens, strconv.FormatInt(u.Tokens(), 10))
	w.Header().Set(HeaderEmbeddingCache, cache)
}

func searchResultToAPI(r *retrieval.Result) SearchResultItem {
	extra := r.Document.Extra()
	if extra == nil {
		extra = map[string]string{}
	}
	return SearchResultItem{
		ID:       r.Document.ID(),
		Title:    r.Document.Title(),
		Content:  r.Document.Content(),
		Category: r.Document.Category(),
		Extra:    extra,
		Score:    r.Score,
	}
}

func warningsToAPI(ws []rules.Warning) []WarningItem {
	out := make([]WarningItem, len(ws))
	for i, w := range ws {
		out[i] = WarningItem{Kind: string(w.Kind), Message: w.Message}
	}
	return out
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
