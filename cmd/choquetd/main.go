// Command choquetd is the Choquet DEA platform service.
// It serves the cycle compute and results API, Prometheus metrics,
// and a health check.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/lucasprac/dea-choquet/internal/api"
	"github.com/lucasprac/dea-choquet/internal/platform"
	"github.com/lucasprac/dea-choquet/internal/results"
	"github.com/lucasprac/dea-choquet/pkg/config"
	"github.com/lucasprac/dea-choquet/pkg/engine"
)

var version = "dev"

// loadConfig layers environment variables over the optional config file.
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, "", err
	}
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil && v > 0 {
		cfg.Server.Port = v
	}
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	switch cfg.Storage.Backend {
	case "gcs":
		cfg.Storage.Bucket = envOrDefault("GCS_BUCKET", cfg.Storage.Bucket)
	case "s3":
		cfg.Storage.Bucket = envOrDefault("S3_BUCKET", cfg.Storage.Bucket)
		cfg.Storage.Region = envOrDefault("S3_REGION", cfg.Storage.Region)
		cfg.Storage.Endpoint = envOrDefault("S3_ENDPOINT", cfg.Storage.Endpoint)
	}
	cfg.Storage.Dir = envOrDefault("LOCAL_STORAGE_PATH", firstNonEmpty(cfg.Storage.Dir, "/tmp/choquet-data"))
	return cfg, os.Getenv("DATABASE_URL"), nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("choquetd exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, databaseURL, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if os.Getenv("OTEL_TRACES_STDOUT") != "" {
		shutdown, err := initTracing(ctx, version)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	// Run index: Postgres when configured, otherwise in-process.
	var (
		index results.RunIndex = results.NewMemoryIndex()
		db    *sql.DB
	)
	if databaseURL != "" {
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if err := platform.AutoMigrate(db); err != nil {
			return err
		}
		index = results.NewPostgresIndex(db)
	} else {
		logger.Warn("DATABASE_URL not set; run history is kept in memory")
	}

	storage, err := results.OpenStorage(ctx, cfg.Storage, cfg.Storage.Dir)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(append(cfg.Engine.Options(), engine.WithLogger(logger))...)
	svc := results.NewService(storage, index, eng, logger)
	h := api.NewHandler(svc, api.NewResultsCache(cfg.Server.CacheSize), nil, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	mux.HandleFunc("GET /readyz", readyHandler(db))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           api.CORS(api.WriteProtected(cfg.Server.APIKey, cfg.Server.RateLimit, cfg.Server.Burst)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting choquetd", "addr", srv.Addr, "storage", firstNonEmpty(cfg.Storage.Backend, "local"))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// readyHandler reports whether the database, when configured, is reachable.
func readyHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}` + "\n"))
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
