package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Turnstyle/ria-hunter/internal/config"
	dbRedis "github.com/Turnstyle/ria-hunter/internal/db/redis"
	logpkg "github.com/Turnstyle/ria-hunter/internal/logger"
	"github.com/Turnstyle/ria-hunter/internal/metrics"
	"github.com/Turnstyle/ria-hunter/internal/repository/embcache"
	peoplerepo "github.com/Turnstyle/ria-hunter/internal/repository/people"
	profilesrepo "github.com/Turnstyle/ria-hunter/internal/repository/profiles"
	chiTransport "github.com/Turnstyle/ria-hunter/internal/transport/chi"
	openaiTransport "github.com/Turnstyle/ria-hunter/internal/transport/openai"
	decomposeuc "github.com/Turnstyle/ria-hunter/internal/usecase/decompose"
	embeddinguc "github.com/Turnstyle/ria-hunter/internal/usecase/embedding"
	enrichuc "github.com/Turnstyle/ria-hunter/internal/usecase/enrich"
	healthuc "github.com/Turnstyle/ria-hunter/internal/usecase/health"
	queryuc "github.com/Turnstyle/ria-hunter/internal/usecase/query"
	"github.com/Turnstyle/ria-hunter/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting ria-hunter API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterQueryMetrics()

	// Make sure the profile index exists before taking traffic.
	if err := profilesrepo.EnsureIndex(ctx, store, profilesrepo.IndexConfig{
		Dimensions:  cfg.Embedding.Dimensions,
		HNSWM:       cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruct,
	}); err != nil {
		logger.Fatal("Failed to ensure profile index", zap.Error(err))
	}

	// Embedding provider chain
	providers := make([]embeddinguc.Provider, 0, len(cfg.Embedding.Providers))
	healthChecks := make(map[string]healthuc.ProviderChecker)
	for _, pc := range cfg.Embedding.Providers {
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     pc.APIKey,
			BaseURL:    pc.BaseURL,
			Model:      pc.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   pc.Name,
			Logger:     logger,
		})
		providers = append(providers, embeddinguc.Provider{
			Name:     pc.Name,
			Embedder: base,
			Timeout:  time.Duration(pc.TimeoutSec) * time.Second,
		})
		healthChecks["embedding_"+pc.Name] = base
	}
	logger.Info("Embedding chain created",
		zap.Int("providers", len(providers)),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	chain := embeddinguc.NewChain(
		providers,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxRetries,
		time.Duration(cfg.Embedding.RetryBackoffMS)*time.Millisecond,
		logger,
	)

	// Cache query embeddings; identical queries skip the provider chain.
	var embedder queryuc.Embedder = chain
	if cfg.Embedding.CacheTTLHours > 0 {
		embedder = embcache.New(
			chain, store,
			time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	// Decomposer: LLM with rule-based floor. Pass nil interface (not a
	// typed nil pointer!) when no completion model is configured.
	var completer decomposeuc.Completer
	if cfg.LLM.APIKey != "" && cfg.LLM.Model != "" {
		completer = openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Logger:  logger,
		})
	}
	decomposer := decomposeuc.New(completer, time.Duration(cfg.LLM.TimeoutSec)*time.Second, logger)

	// Repositories and use case services
	profileRepo := profilesrepo.New(store)
	peopleRepo := peoplerepo.New(store)

	enricher := enrichuc.New(peopleRepo, enrichuc.Config{
		TopK:          cfg.Enrich.TopK,
		MaxPeople:     cfg.Enrich.MaxPeople,
		Concurrency:   cfg.Enrich.Concurrency,
		LookupTimeout: time.Duration(cfg.Enrich.LookupTimeoutMS) * time.Millisecond,
		Deadline:      time.Duration(cfg.Enrich.DeadlineMS) * time.Millisecond,
	}, logger)

	querySvc := queryuc.New(decomposer, embedder, profileRepo, enricher, queryuc.Config{
		SimilarityThreshold: cfg.Search.SimilarityThreshold,
		RRFK:                cfg.Search.RRFK,
		SemanticWeight:      cfg.Search.SemanticWeight,
		LexicalWeight:       cfg.Search.LexicalWeight,
		GeoBoost:            cfg.Search.GeoBoost,
		ServiceBoost:        cfg.Search.ServiceBoost,
	}, logger)

	healthSvc := healthuc.New(store, healthChecks)

	// HTTP server
	server := chiTransport.NewServer(querySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one line per request
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
