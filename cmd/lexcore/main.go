package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hukukai/lexcore/internal/config"
	"github.com/hukukai/lexcore/internal/corpus"
	dbRedis "github.com/hukukai/lexcore/internal/db/redis"
	"github.com/hukukai/lexcore/internal/domain"
	logpkg "github.com/hukukai/lexcore/internal/logger"
	"github.com/hukukai/lexcore/internal/metrics"
	budgetrepo "github.com/hukukai/lexcore/internal/repository/budget"
	"github.com/hukukai/lexcore/internal/repository/embcache"
	"github.com/hukukai/lexcore/internal/ruleset"
	chiTransport "github.com/hukukai/lexcore/internal/transport/chi"
	openaiEmb "github.com/hukukai/lexcore/internal/transport/openai"
	advisoruc "github.com/hukukai/lexcore/internal/usecase/advisor"
	embeddinguc "github.com/hukukai/lexcore/internal/usecase/embedding"
	healthuc "github.com/hukukai/lexcore/internal/usecase/health"
	"github.com/hukukai/lexcore/internal/usecase/retrieval"
	"github.com/hukukai/lexcore/internal/usecase/rules"
	usageuc "github.com/hukukai/lexcore/internal/usecase/usage"
	"github.com/hukukai/lexcore/internal/version"
)

const provider = "openai"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexcore API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus", cfg.Corpus.Path),
		zap.String("rules", cfg.Rules.Path),
		zap.Bool("embedding", cfg.Embedding.Enabled()),
		zap.Bool("cache", cfg.Cache.Enabled()),
	)

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCoreMetrics()

	ctx := context.Background()

	// Optional cache: embedding vectors and budget counters.
	var cache *dbRedis.Store
	if cfg.Cache.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cache.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	docEmbedder, queryEmbedder, tracker := buildEmbedders(ctx, &cfg, cache, logger)

	docs, err := corpus.LoadFile(cfg.Corpus.Path)
	if err != nil {
		logger.Warn("Corpus unreadable, continuing with empty corpus",
			zap.String("path", cfg.Corpus.Path), zap.Error(err))
	}
	if len(docs) == 0 {
		logger.Warn("Corpus is empty", zap.String("path", cfg.Corpus.Path))
	}

	index := retrieval.BuildIndex(ctx, docs, docEmbedder, retrieval.IndexOptions{
		Timeout:     cfg.Embedding.Timeout(),
		Concurrency: cfg.Embedding.Concurrency,
	}, logger)
	metrics.CorpusDocuments.WithLabelValues("total").Set(float64(index.Len()))
	metrics.CorpusDocuments.WithLabelValues("vectorized").Set(float64(index.VectorCount()))

	ruleSet, diags := ruleset.LoadFile(cfg.Rules.Path)
	for _, d := range diags {
		logger.Warn("Rule entry skipped", zap.Error(d))
	}
	logger.Info("Rules loaded",
		zap.Int("categories", len(ruleSet)),
		zap.Int("skipped", len(diags)),
	)

	// Nil interface, not a typed nil pointer, keeps term frequency primary.
	var primary retrieval.Scorer
	if queryEmbedder != nil {
		primary = retrieval.NewEmbeddingScorer(queryEmbedder, cfg.Embedding.Timeout(), logger)
	}

	searchSvc := retrieval.New(index, primary,
		retrieval.WithLogger(logger),
		retrieval.WithSearchCounter(metrics.RetrievalSearchesTotal),
		retrieval.WithFallbackCounter(metrics.RetrievalFallbackTotal),
	)
	engine := rules.New(ruleSet,
		rules.WithLogger(logger),
		rules.WithWarningCounter(metrics.RuleWarningsTotal),
	)
	advisorSvc := advisoruc.New(engine, searchSvc)

	var cachePinger healthuc.CachePinger
	if cache != nil {
		cachePinger = cache
	}
	var embeddingChecker healthuc.EmbeddingChecker
	if queryEmbedder != nil {
		embeddingChecker = newEmbeddingHealthChecker(queryEmbedder)
	}
	healthSvc := healthuc.New(index, cachePinger, embeddingChecker)

	var budgetReader usageuc.BudgetReader
	if tracker != nil {
		budgetReader = tracker
	}
	usageSvc := usageuc.New(budgetReader, nil)

	server := chiTransport.NewServer(searchSvc, engine, advisorSvc, healthSvc, usageSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.APIKeyAuth(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server",
			zap.String("addr", addr),
			zap.String("backend", string(searchSvc.Backend())),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedders returns the document and query embedders, or nils when the
// provider is disabled. Both share one budget tracker, returned when limits
// are configured.
func buildEmbedders(
	ctx context.Context, cfg *config.Config, cache *dbRedis.Store, logger *zap.Logger,
) (domain.Embedder, domain.Embedder, *embeddinguc.BudgetTracker) {
	base, err := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   provider,
		Logger:     logger,
	})
	if errors.Is(err, domain.ErrEmbeddingDisabled) {
		logger.Info("Embedding provider disabled, using term-frequency retrieval")
		return nil, nil, nil
	}
	if err != nil {
		logger.Warn("Embedding provider unavailable, using term-frequency retrieval", zap.Error(err))
		return nil, nil, nil
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	var budget embeddinguc.BudgetChecker
	var tracker *embeddinguc.BudgetTracker
	budgetCfg := cfg.Embedding.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		tracker = embeddinguc.NewBudgetTracker(embeddinguc.BudgetConfig{
			Provider:     provider,
			DailyLimit:   budgetCfg.DailyTokenLimit,
			MonthlyLimit: budgetCfg.MonthlyTokenLimit,
			Action:       embeddinguc.BudgetAction(budgetCfg.Action),
		}, logger)
		if cache != nil {
			// Connect persistence store, loading current counters.
			tracker.WithStore(ctx, budgetrepo.New(cache))
		}
		budget = tracker
	}

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Config{
			Namespace:  base.Model(),
			TTL:        cfg.Cache.TTL(),
			CacheTotal: metrics.EmbeddingCacheTotal,
			Logger:     logger,
		})
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, provider, base.Model(), budget, logger)

	logger.Info("Embedder created",
		zap.String("provider", provider),
		zap.String("model", base.Model()),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Instruction prefix is outermost, so the cache key includes it.
	return withInstruction(embedder, cfg.Embedding.DocumentInstruction),
		withInstruction(embedder, cfg.Embedding.QueryInstruction),
		tracker
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ctx, reqLogger := logpkg.WithRequest(r.Context(), logger, requestID)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
