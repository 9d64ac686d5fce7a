package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/finance_dashboard/internal/ingest"
	"github.com/SscSPs/finance_dashboard/internal/platform/config"
	"github.com/SscSPs/finance_dashboard/internal/platform/store"
	"github.com/SscSPs/finance_dashboard/internal/utils/dates"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer backend.Close()

	processor := ingest.NewProcessor(backend.Repos.TransactionRepo, dates.NewNormalizer(loc), logger)

	logger.Info("Ingest worker starting", slog.String("exchange", cfg.AMQPExchange), slog.String("queue", cfg.AMQPQueue))
	if err := ingest.Run(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, processor.Handle); err != nil {
		logger.Error("Ingest worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Ingest worker stopped")
}
