package workers

import (
	"context"
	"time"

	"koomy/portal/internal/db/repositories"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
)

// OrphanReporter is the part of the upload ledger the monitor reads
type OrphanReporter interface {
	CountOrphans(ctx context.Context, olderThan time.Duration) (int, error)
	ListOrphans(ctx context.Context, olderThan time.Duration) ([]repositories.OrphanUpload, error)
}

// OrphanUploadMonitor periodically reports upload slots that were issued but
// never finalized. Objects are never deleted here.
type OrphanUploadMonitor struct {
	ledger    OrphanReporter
	metrics   *metrics.MetricsRegistry
	olderThan time.Duration

	// report at most this many orphan rows per check
	listLimit int
}

func NewOrphanUploadMonitor(ledger OrphanReporter, m *metrics.MetricsRegistry, olderThan time.Duration) *OrphanUploadMonitor {
	return &OrphanUploadMonitor{
		ledger:    ledger,
		metrics:   m,
		olderThan: olderThan,
		listLimit: 20,
	}
}

// Start checks the ledger immediately and then on every tick until ctx is done
func (m *OrphanUploadMonitor) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Orphan upload monitor starting", "interval", interval.String(), "older_than", m.olderThan.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Orphan upload monitor shutting down")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check counts orphans, publishes the gauge and logs the oldest rows. It
// returns the count, or -1 when the ledger could not be read.
func (m *OrphanUploadMonitor) Check(ctx context.Context) int {
	n, err := m.ledger.CountOrphans(ctx, m.olderThan)
	if err != nil {
		if ctx.Err() == nil {
			logging.Error("Failed to count orphan uploads", "error", err)
		}
		return -1
	}
	if m.metrics != nil {
		m.metrics.OrphanedUploads.Set(float64(n))
	}
	if n == 0 {
		return 0
	}

	rows, err := m.ledger.ListOrphans(ctx, m.olderThan)
	if err != nil {
		logging.Error("Failed to list orphan uploads", "error", err)
		return n
	}
	if len(rows) > m.listLimit {
		rows = rows[:m.listLimit]
	}
	for _, o := range rows {
		logging.Warn("Orphaned upload",
			"attempt_id", o.ID,
			"kind", o.Kind,
			"stage", o.Stage,
			"error_code", o.ErrorCode,
			"upload_url", o.UploadURL,
			"created_at", o.CreatedAt,
		)
	}
	logging.Warn("Orphan upload check complete", "orphans", n, "threshold", m.olderThan.String())
	return n
}
