// Package services hosts the re-aggregation orchestrator that owns the
// dataset, the active window and the last-published donor list and
// metrics.
package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"donordash/internal/core"
	"donordash/internal/source"
)

// DashboardService coordinates the aggregation pipeline. It holds the
// full historical dataset and rebuilds the donor list, metrics and
// breakdowns from scratch on every window change; published state is
// always internally consistent because all three are swapped in together.
//
// Concurrent filter requests are serialized by a request sequence number:
// a newer request supersedes an in-flight older one, and superseded
// results are discarded instead of published.
type DashboardService struct {
	src source.TransactionSource

	mu         sync.Mutex
	seq        uint64
	loaded     bool
	all        []core.Record
	filtered   bool
	start, end core.Date
	donors     []core.Donor
	metrics    core.Metrics
	breakdowns core.Breakdowns
}

func NewDashboardService(src source.TransactionSource) *DashboardService {
	return &DashboardService{src: src}
}

// LoadDataset installs a caller-supplied dataset (the fallback path when
// the configured source is unreachable) and recomputes everything over
// the full, unfiltered window.
func (s *DashboardService) LoadDataset(records []core.Record) {
	s.mu.Lock()
	s.all = records
	s.loaded = true
	seq := s.bumpLocked()
	s.mu.Unlock()

	s.recomputeUnfiltered(records, seq)
}

// LoadFromSource pulls the full dataset through the configured source.
// On failure the previously published state is left untouched and a
// *DataLoadError is returned.
func (s *DashboardService) LoadFromSource(ctx context.Context) error {
	records, err := s.src.Load(ctx)
	if err != nil {
		return &DataLoadError{Err: err}
	}
	s.LoadDataset(records)
	slog.InfoContext(ctx, "Dataset loaded",
		"component", "dashboard",
		"records", len(records))
	return nil
}

// ApplyFilter validates the bounds, derives the active window from the
// full historical dataset and publishes the recomputed donor list,
// metrics and breakdowns together. Invalid input returns a
// *ValidationError with no state change.
func (s *DashboardService) ApplyFilter(startStr, endStr string) error {
	start := core.ParseDate(startStr)
	if !start.Valid {
		return &ValidationError{Message: "invalid start date"}
	}
	end := core.ParseDate(endStr)
	if !end.Valid {
		return &ValidationError{Message: "invalid end date"}
	}
	if start.After(end.Time) {
		return &ValidationError{Message: "start date cannot be after end date"}
	}

	s.mu.Lock()
	all := s.all
	seq := s.bumpLocked()
	s.mu.Unlock()

	active := core.SelectWindow(all, start, end)
	donors := core.Aggregate(active)
	metrics := core.ComputeMetrics(active, all, start)
	breakdowns := core.ComputeBreakdowns(active, all, start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// superseded by a newer request; discard
		return nil
	}
	s.filtered = true
	s.start, s.end = start, end
	s.donors, s.metrics, s.breakdowns = donors, metrics, breakdowns
	return nil
}

// ResetFilter reloads the full historical dataset from the source and
// returns to the unfiltered state. On load failure the prior state stays
// published and a *DataLoadError is returned.
func (s *DashboardService) ResetFilter(ctx context.Context) error {
	records, err := s.src.Load(ctx)
	if err != nil {
		return &DataLoadError{Err: err}
	}

	s.mu.Lock()
	s.all = records
	s.loaded = true
	seq := s.bumpLocked()
	s.mu.Unlock()

	s.recomputeUnfiltered(records, seq)
	slog.InfoContext(ctx, "Filter reset",
		"component", "dashboard",
		"records", len(records))
	return nil
}

// recomputeUnfiltered rebuilds published state over the whole dataset.
// In the unfiltered state there is no window start, so the first-time
// baseline is empty and records with invalid dates stay included.
func (s *DashboardService) recomputeUnfiltered(all []core.Record, seq uint64) {
	donors := core.Aggregate(all)
	metrics := core.ComputeMetrics(all, all, core.Date{})
	breakdowns := core.ComputeBreakdowns(all, all, core.Date{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	s.filtered = false
	s.start, s.end = core.Date{}, core.Date{}
	s.donors, s.metrics, s.breakdowns = donors, metrics, breakdowns
}

// bumpLocked advances the request sequence. Callers must hold s.mu.
func (s *DashboardService) bumpLocked() uint64 {
	s.seq++
	return s.seq
}

// Donors returns the published donor list, ordered by last donation date
// descending with total-donated tie-break.
func (s *DashboardService) Donors() []core.Donor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Donor(nil), s.donors...)
}

// Metrics returns the published window metrics.
func (s *DashboardService) Metrics() core.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Breakdowns returns the published chart rollups.
func (s *DashboardService) Breakdowns() core.Breakdowns {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.breakdowns
}

// Donor looks up a single donor by exact email.
func (s *DashboardService) Donor(email string) (core.Donor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.donors {
		if d.Email == email {
			return d, true
		}
	}
	return core.Donor{}, false
}

// SearchDonors filters the published donor list by a case-insensitive
// substring match on name or email. An empty query returns everyone.
func (s *DashboardService) SearchDonors(query string) []core.Donor {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.Lock()
	defer s.mu.Unlock()
	if query == "" {
		return append([]core.Donor(nil), s.donors...)
	}
	var out []core.Donor
	for _, d := range s.donors {
		if strings.Contains(strings.ToLower(d.Name), query) ||
			strings.Contains(strings.ToLower(d.Email), query) {
			out = append(out, d)
		}
	}
	return out
}

// Window reports the active window bounds. filtered is false in the
// unfiltered state, where both bounds are the invalid-date marker.
func (s *DashboardService) Window() (start, end core.Date, filtered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.start, s.end, s.filtered
}

// Loaded reports whether a dataset has been installed at least once.
// Readiness probes gate on it: before the first load there is nothing to
// serve.
func (s *DashboardService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}
