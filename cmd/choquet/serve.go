package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lucasprac/dea-choquet/internal/api"
	"github.com/lucasprac/dea-choquet/internal/results"
	"github.com/lucasprac/dea-choquet/pkg/engine"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results API from the local results directory",
		Long: `Starts the HTTP API on localhost backed by local storage and an
in-memory run index. Use choquetd for a database-backed deployment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to serve on (default: server.port from config)")

	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	logger := newLogger(cmd)
	dir := resultsDir(cfg)
	eng := engine.NewEngine(append(cfg.Engine.Options(), engine.WithLogger(logger))...)
	svc := results.NewService(results.NewLocalStorage(dir), results.NewMemoryIndex(), eng, logger)
	h := api.NewHandler(svc, api.NewResultsCache(cfg.Server.CacheSize), nil, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	handler := api.CORS(api.WriteProtected(cfg.Server.APIKey, cfg.Server.RateLimit, cfg.Server.Burst)(mux))

	srv := &http.Server{
		Addr:              "127.0.0.1:" + strconv.Itoa(port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Choquet API server\n")
	fmt.Fprintf(os.Stderr, "  Results:    %s\n", dir)
	fmt.Fprintf(os.Stderr, "  Listening:  http://%s\n", srv.Addr)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
