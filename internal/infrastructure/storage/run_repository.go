// Package storage provides storage implementations for the application layer ports.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/jbctechsolutions/tokenlens/internal/application/ports"
	"github.com/jbctechsolutions/tokenlens/internal/domain/metrics"
)

// DefaultRunCapacity is the number of runs kept when none is configured.
const DefaultRunCapacity = 500

// RunRepository implements ports.RunStoragePort as a bounded in-memory ring.
// Once full, the oldest run is overwritten.
type RunRepository struct {
	mu    sync.RWMutex
	runs  []metrics.RunRecord
	next  int
	count int
}

// NewRunRepository creates a repository keeping the latest capacity runs.
func NewRunRepository(capacity int) ports.RunStoragePort {
	if capacity <= 0 {
		capacity = DefaultRunCapacity
	}
	return &RunRepository{runs: make([]metrics.RunRecord, capacity)}
}

// SaveRun stores a copy of run.
func (r *RunRepository) SaveRun(ctx context.Context, run *metrics.RunRecord) error {
	if run == nil {
		return fmt.Errorf("run record is nil")
	}

	stored := *run
	stored.Models = append([]metrics.ModelRecord(nil), run.Models...)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[r.next] = stored
	r.next = (r.next + 1) % len(r.runs)
	if r.count < len(r.runs) {
		r.count++
	}
	return nil
}

// GetRuns retrieves run records matching the filter, oldest first.
func (r *RunRepository) GetRuns(ctx context.Context, filter metrics.Filter) ([]metrics.RunRecord, error) {
	return filter.Apply(r.snapshot()), nil
}

// GetSummary aggregates the runs within period.
func (r *RunRepository) GetSummary(ctx context.Context, period metrics.TimePeriod) (*metrics.Summary, error) {
	return metrics.Summarize(r.snapshot(), period), nil
}

// snapshot returns the stored runs in insertion order.
func (r *RunRepository) snapshot() []metrics.RunRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metrics.RunRecord, 0, r.count)
	start := (r.next - r.count + len(r.runs)) % len(r.runs)
	for i := 0; i < r.count; i++ {
		out = append(out, r.runs[(start+i)%len(r.runs)])
	}
	return out
}
