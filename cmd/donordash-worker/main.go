package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"donordash/internal/amqp"
	"donordash/internal/cli"
	"donordash/internal/source"
	"donordash/internal/source/google"
	"donordash/internal/source/jsonfile"
	"donordash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting donordash-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The worker pulls from the upstream export and mirrors it into
	// SQLite, which the server reads from.
	var upstream source.TransactionSource
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := google.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		upstream = sheetsClient
		logger.Info("Using Google Sheets upstream", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		upstream = jsonfile.New(cfg.DatasetPath)
		logger.Info("Using JSON file upstream", "path", cfg.DatasetPath)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The refresh bus is optional; without it consumers rely on their
	// periodic reload.
	var bus *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		bus, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without refresh bus", "error", err)
		} else {
			defer bus.Close()
		}
	}

	importWorker := worker.NewImportWorker(upstream, repo, bus, cfg.RefreshInterval)

	// Mirror the dataset once before settling into the periodic loop.
	if err := importWorker.RunOnce(ctx, "worker startup"); err != nil {
		logger.Error("Startup import failed", "error", err)
		os.Exit(1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return importWorker.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
