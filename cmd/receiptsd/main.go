package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"receipt-digitizer/internal/common"
	"receipt-digitizer/internal/export"
	"receipt-digitizer/internal/llm/gemini"
	"receipt-digitizer/internal/pipeline"
	"receipt-digitizer/internal/repository"
	"receipt-digitizer/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	parser := gemini.NewClient(gemini.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	// Refuse to serve with a bad key; every upload would fail anyway.
	keyCtx, cancel := context.WithTimeout(ctx, cfg.LLM.Timeout)
	if err := parser.VerifyKey(keyCtx); err != nil {
		cancel()
		logger.Error("gemini key verification failed", "error", err)
		os.Exit(1)
	}
	cancel()
	logger.Info("gemini key verified", "model", cfg.LLM.Model)

	proc := pipeline.NewProcessor(parser, store, logger)
	exp := export.NewService(store, logger)
	srv := server.New(proc, store, exp, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}

func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return repository.OpenPostgres(ctx, repository.PostgresConfig{
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
	default:
		return repository.OpenSQLite(ctx, cfg.Database.Path, logger)
	}
}
