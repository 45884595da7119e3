// Package ports defines the application layer port interfaces following hexagonal architecture.
// Ports are abstractions that allow the application core to interact with external systems
// (adapters) without knowing their implementation details.
package ports

import (
	"context"

	"github.com/jbctechsolutions/tokenlens/internal/domain/metrics"
)

// RunStoragePort defines the interface for keeping analysis run records.
// The shipped implementation is an in-memory ring; nothing is persisted.
type RunStoragePort interface {
	// SaveRun stores a completed or failed run record.
	SaveRun(ctx context.Context, run *metrics.RunRecord) error

	// GetRuns retrieves run records matching the filter, oldest first.
	GetRuns(ctx context.Context, filter metrics.Filter) ([]metrics.RunRecord, error)

	// GetSummary aggregates the runs within period.
	GetSummary(ctx context.Context, period metrics.TimePeriod) (*metrics.Summary, error)
}
