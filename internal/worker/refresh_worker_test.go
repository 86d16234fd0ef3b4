package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"donordash/internal/amqp"
	"donordash/internal/core"
	"donordash/internal/services"
	"donordash/internal/source/memory"
)

func TestHandleRefreshMessageReloads(t *testing.T) {
	store := memory.NewSample()
	svc := services.NewDashboardService(store)
	if err := svc.LoadFromSource(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	w := NewRefreshWorker(svc, time.Minute)

	records, _ := store.Load(context.Background())
	extra := core.Record{
		Email:     "new@x.com",
		Value:     core.Money{Cents: 1000},
		EntryDate: core.NewDate(2024, 3, 1),
	}
	store.Replace(append(records, extra))

	msg := amqp.NewDatasetRefreshMessage("test refresh")
	if err := w.HandleRefreshMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle refresh: %v", err)
	}

	if got := svc.Metrics().TransactionCount; got != 3 {
		t.Errorf("transaction count after refresh = %d, want 3", got)
	}
}

func TestRunPeriodicReloadsOnTick(t *testing.T) {
	store := memory.NewSample()
	svc := services.NewDashboardService(store)
	if err := svc.LoadFromSource(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	w := NewRefreshWorker(svc, 10*time.Millisecond)

	records, _ := store.Load(context.Background())
	extra := core.Record{
		Email:     "new@x.com",
		Value:     core.Money{Cents: 1000},
		EntryDate: core.NewDate(2024, 3, 1),
	}
	store.Replace(append(records, extra))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunPeriodic(ctx) }()

	deadline := time.After(2 * time.Second)
	for svc.Metrics().TransactionCount != 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("dataset not reloaded on tick, count = %d", svc.Metrics().TransactionCount)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("RunPeriodic returned %v, want context.Canceled", err)
	}
}

func TestStartupLoadWrapsSourceFailure(t *testing.T) {
	svc := services.NewDashboardService(failingSource{})
	w := NewRefreshWorker(svc, time.Minute)

	err := w.StartupLoad(context.Background())
	if err == nil {
		t.Fatal("expected startup load error")
	}
	var lerr *services.DataLoadError
	if !errors.As(err, &lerr) {
		t.Errorf("error chain missing DataLoadError: %v", err)
	}
}

func TestHandleRefreshMessageKeepsStateOnFailure(t *testing.T) {
	store := memory.NewSample()
	svc := services.NewDashboardService(store)
	if err := svc.LoadFromSource(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	// Swap in a source that fails; the published dataset must survive.
	failing := services.NewDashboardService(failingSource{})
	failing.LoadDataset(mustLoad(t, store))
	w := NewRefreshWorker(failing, time.Minute)

	msg := amqp.NewDatasetRefreshMessage("test refresh")
	if err := w.HandleRefreshMessage(context.Background(), msg); err == nil {
		t.Fatal("expected reload error")
	}
	if got := failing.Metrics().TransactionCount; got != 2 {
		t.Errorf("transaction count after failed refresh = %d, want 2", got)
	}
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]core.Record, error) {
	return nil, context.DeadlineExceeded
}

func mustLoad(t *testing.T, store *memory.Store) []core.Record {
	t.Helper()
	records, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	return records
}
