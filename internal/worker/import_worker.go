package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"donordash/internal/amqp"
	"donordash/internal/source"
	"donordash/internal/storage"
)

// ImportWorker mirrors the upstream donation export into SQLite so the
// dashboard can serve from local storage. After a successful import it
// announces the new dataset on the refresh bus.
type ImportWorker struct {
	upstream source.TransactionSource
	repo     *storage.SQLiteRepository
	bus      *amqp.Client
	interval time.Duration
}

func NewImportWorker(upstream source.TransactionSource, repo *storage.SQLiteRepository, bus *amqp.Client, interval time.Duration) *ImportWorker {
	return &ImportWorker{
		upstream: upstream,
		repo:     repo,
		bus:      bus,
		interval: interval,
	}
}

// RunOnce performs a single import cycle: pull the full upstream dataset,
// replace the SQLite copy and publish a refresh message.
func (w *ImportWorker) RunOnce(ctx context.Context, reason string) error {
	records, err := w.upstream.Load(ctx)
	if err != nil {
		return fmt.Errorf("load upstream dataset: %w", err)
	}

	if err := w.repo.Import(ctx, records); err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}

	slog.InfoContext(ctx, "Dataset imported",
		"records", len(records),
		"reason", reason)

	if w.bus != nil {
		if err := w.bus.PublishRefresh(ctx, reason); err != nil {
			// The import itself succeeded; consumers catch up on the
			// next periodic reload.
			slog.WarnContext(ctx, "Failed to publish refresh message", "error", err)
		}
	}

	return nil
}

// Run imports on a fixed interval until ctx is done. Failed cycles keep
// the previous SQLite copy and are retried on the next tick.
func (w *ImportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic dataset import started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic dataset import stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx, "periodic import"); err != nil {
				slog.ErrorContext(ctx, "Import cycle failed", "error", err)
			}
		}
	}
}
