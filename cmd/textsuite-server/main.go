// Command textsuite-server serves topic discovery, sentiment, paraphrase,
// chat and the report archive over HTTP.
//
// Usage:
//
//	go run ./cmd/textsuite-server [-config textsuite.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cognicore/textsuite/internal/app"
	"github.com/cognicore/textsuite/internal/logger"
	"github.com/cognicore/textsuite/internal/server"
	"github.com/cognicore/textsuite/pkg/textsuite/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to build suite", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	srv := server.New(a.Suite, server.Options{
		Metrics:        a.Metrics,
		MetricsPath:    cfg.Metrics.Path,
		MaxUploadBytes: cfg.Extract.MaxBytes,
	})
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("textsuite server listening", "addr", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("textsuite server stopped")
}
