package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"donordash/internal/amqp"
	"donordash/internal/services"
)

// RefreshWorker keeps the dashboard dataset in sync with the upstream
// donation export. It reloads on AMQP refresh messages and on a periodic
// timer, whichever fires first.
type RefreshWorker struct {
	dashboard *services.DashboardService
	interval  time.Duration
}

func NewRefreshWorker(dashboard *services.DashboardService, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		dashboard: dashboard,
		interval:  interval,
	}
}

// HandleRefreshMessage processes a single dataset refresh message.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.DatasetRefreshMessage) error {
	slog.InfoContext(ctx, "Processing refresh message",
		"reason", msg.Reason,
		"published_at", msg.Timestamp.Format(time.RFC3339))

	if err := w.dashboard.ResetFilter(ctx); err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	return nil
}

// RunPeriodic reloads the dataset on a fixed interval until ctx is done.
// A failed reload keeps the previously published state and is retried on
// the next tick.
func (w *RefreshWorker) RunPeriodic(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Periodic dataset refresh started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Periodic dataset refresh stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.dashboard.ResetFilter(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed, keeping current dataset", "error", err)
				continue
			}
			slog.InfoContext(ctx, "Periodic refresh completed")
		}
	}
}

// StartupLoad performs the initial dataset load. Unlike periodic
// refreshes, a startup failure is fatal: the worker has nothing to serve.
func (w *RefreshWorker) StartupLoad(ctx context.Context) error {
	if err := w.dashboard.LoadFromSource(ctx); err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}
	return nil
}
