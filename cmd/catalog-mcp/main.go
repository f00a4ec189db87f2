package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"product-catalog/internal/config"
	"product-catalog/internal/database"
	"product-catalog/internal/products/messaging"
	"product-catalog/internal/products/repository"
	"product-catalog/internal/products/service"
	"product-catalog/internal/products/tools"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
)

const serverVersion = "1.0.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadMCP()

	// stdout carries the protocol on the stdio transport.
	var out io.Writer = os.Stdout
	if err == nil && cfg.Transport == config.TransportStdio {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, nil))

	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, logger))
}

func run(cfg config.MCP, logger *slog.Logger) int {
	if err := database.Migrate(cfg.Database); err != nil {
		logger.Error("run migrations", "error", err)
		return 1
	}

	db, err := database.Open(context.Background(), cfg.Database)
	if err != nil {
		logger.Error("open database", "error", err)
		return 1
	}
	defer db.Close()

	// Tool calls are read-only, so create-side collaborators stay inert.
	svc := service.New(repository.New(db.DB, db.Driver), messaging.NopPublisher{}, logger, service.Metrics{
		Created:   prometheus.NewCounter(prometheus.CounterOpts{Name: "mcp_products_created_total"}),
		Duplicate: prometheus.NewCounter(prometheus.CounterOpts{Name: "mcp_products_duplicate_rejected_total"}),
	})
	server := tools.NewServer(svc, logger, serverVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Transport == config.TransportStdio {
		logger.Info("catalog mcp server started", "transport", cfg.Transport)
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("mcp server failed", "error", err)
			return 1
		}
		logger.Info("catalog mcp server stopped")
		return 0
	}

	httpServer := &http.Server{
		Addr: cfg.Addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return server
		}, nil),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("catalog mcp server started", "transport", cfg.Transport, "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("mcp http server failed", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}

	logger.Info("catalog mcp server stopped")
	return exitCode
}
