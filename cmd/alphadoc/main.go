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

	chirouter "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/alphadoc-ai/alphadoc/internal/config"
	"github.com/alphadoc-ai/alphadoc/internal/db"
	dbRedis "github.com/alphadoc-ai/alphadoc/internal/db/redis"
	"github.com/alphadoc-ai/alphadoc/internal/domain"
	logpkg "github.com/alphadoc-ai/alphadoc/internal/logger"
	"github.com/alphadoc-ai/alphadoc/internal/metrics"
	"github.com/alphadoc-ai/alphadoc/internal/repository/corpus"
	"github.com/alphadoc-ai/alphadoc/internal/repository/workspace"
	chiTransport "github.com/alphadoc-ai/alphadoc/internal/transport/chi"
	"github.com/alphadoc-ai/alphadoc/internal/transport/openai"
	"github.com/alphadoc-ai/alphadoc/internal/version"
)

func main() {
	_ = godotenv.Load()

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

	logger.Info("Starting alphadoc API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("system_db_addrs", cfg.SystemDB.Addrs),
	)

	if err := domain.ValidateCatalog(); err != nil {
		logger.Fatal("Invalid filter catalog", zap.Error(err))
	}

	// System store holds workspace records; tenant stores are dialed lazily.
	systemStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.SystemDB.Addrs,
		Username: cfg.SystemDB.Username,
		Password: cfg.SystemDB.Password,
		DB:       cfg.SystemDB.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create system store", zap.Error(err))
	}
	defer systemStore.Close()

	ctx := context.Background()
	if err := systemStore.WaitForReady(ctx, time.Duration(cfg.SystemDB.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("System store not ready", zap.Error(err))
	}
	logger.Info("Connected to system store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	indexSettings := corpus.IndexSettings{
		VectorDim:       cfg.Index.VectorDim,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	}

	registry := workspace.NewRegistry(systemStore)
	resolver := workspace.NewResolver(
		registry,
		func(addrs []string, username, password string, dbNum int) (db.Store, error) {
			return dbRedis.NewStore(dbRedis.Config{
				Addrs:    addrs,
				Username: username,
				Password: password,
				DB:       dbNum,
			})
		},
		func(ctx context.Context, store db.Store, indexName string) error {
			return corpus.EnsureIndexes(ctx, store, indexName, indexSettings)
		},
		logger,
	)
	defer resolver.Close()

	modelCfg := &openai.Config{
		BaseURL:        cfg.Retrieval.BaseURL,
		EmbeddingModel: cfg.Retrieval.EmbeddingModel,
		ChatModel:      cfg.Retrieval.ChatModel,
		Logger:         logger,
	}
	newModel := func(apiKey string) chiTransport.ModelClient {
		return openai.NewClient(modelCfg, apiKey)
	}

	server := chiTransport.NewServer(resolver, newModel, systemStore, logger).
		WithTopK(cfg.Retrieval.TopK).
		WithRegistrar(registry)

	r := chirouter.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Mount("/", server.Router())

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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
