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
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/config"
	"github.com/kailas-cloud/propdex/internal/db"
	dbFirestore "github.com/kailas-cloud/propdex/internal/db/firestore"
	dbMemory "github.com/kailas-cloud/propdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/propdex/internal/db/redis"
	logpkg "github.com/kailas-cloud/propdex/internal/logger"
	"github.com/kailas-cloud/propdex/internal/metrics"
	propertyrepo "github.com/kailas-cloud/propdex/internal/repository/property"
	chiTransport "github.com/kailas-cloud/propdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/propdex/internal/usecase/health"
	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
	searchuc "github.com/kailas-cloud/propdex/internal/usecase/search"
	"github.com/kailas-cloud/propdex/internal/version"
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

	logger.Info("Starting propdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register listing metrics explicitly (no init())
	metrics.RegisterListingMetrics()

	repo := propertyrepo.New(store,
		propertyrepo.WithCollection(cfg.Storage.Collection),
		propertyrepo.WithLogger(logger),
		propertyrepo.WithOpCounter(metrics.RepositoryOpsTotal),
	)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure listing schema", zap.Error(err))
	}

	resolve, err := searchuc.ResolverFor(searchuc.GeoSource(cfg.Search.GeoSource))
	if err != nil {
		logger.Fatal("Invalid geo source", zap.Error(err))
	}
	policy, err := propertyuc.ParseEmptyCriteriaPolicy(cfg.Search.EmptyCriteria)
	if err != nil {
		logger.Fatal("Invalid empty criteria policy", zap.Error(err))
	}

	engine := searchuc.NewEngine(buildStrategies(repo, resolve, logger), logger,
		searchuc.WithObserver(&searchuc.PrometheusObserver{
			FacetDuration: metrics.SearchFacetDuration,
			FacetResults:  metrics.SearchFacetResults,
			Results:       metrics.SearchResults,
		}),
	)

	propertySvc := propertyuc.New(repo, engine).WithEmptyCriteriaPolicy(policy)
	healthSvc := healthuc.New(store)

	server := chiTransport.NewServer(
		propertySvc,
		healthSvc,
		chiTransport.NewAuthenticator(cfg.Auth.SigningKey, cfg.Auth.Audience),
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// openStore creates the document store selected by database.driver.
func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverValkey, config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Database.Addrs,
			Username:  cfg.Database.Username,
			Password:  cfg.Database.Password,
			KeyPrefix: cfg.Storage.KeyPrefix,
			PageSize:  cfg.Search.PageSize,
		})
	case config.DriverFirestore:
		return dbFirestore.NewStore(ctx, firestoreConfig(cfg))
	case config.DriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// firestoreConfig maps storage.key_prefix onto collection names, so "propdex:"
// stores listings in the "propdex:properties" collection.
func firestoreConfig(cfg config.Config) dbFirestore.Config {
	return dbFirestore.Config{
		ProjectID:        cfg.Database.ProjectID,
		CredentialsFile:  cfg.Database.CredentialsFile,
		CollectionPrefix: cfg.Storage.KeyPrefix,
	}
}

// buildStrategies wires the facet strategies in evaluation order, with geo skips counted.
func buildStrategies(
	repo searchuc.Repository, resolve searchuc.LocationResolver, logger *zap.Logger,
) []searchuc.Strategy {
	return []searchuc.Strategy{
		searchuc.NewCityStrategy(repo),
		searchuc.NewPriceStrategy(repo),
		searchuc.NewPropertyTypeStrategy(repo),
		searchuc.NewListingTypeStrategy(repo),
		searchuc.NewKeywordStrategy(repo),
		searchuc.NewGeoStrategy(repo, resolve, logger).WithSkipCounter(metrics.SearchGeoSkippedTotal),
	}
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
						"error": "Internal server error",
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

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
