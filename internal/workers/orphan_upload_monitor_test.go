package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"koomy/portal/internal/config"
	"koomy/portal/internal/db/repositories"
	"koomy/portal/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLedger struct {
	count  int
	err    error
	rows   []repositories.OrphanUpload
	checks atomic.Int32
	lists  atomic.Int32
}

func (f *fakeLedger) CountOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	f.checks.Add(1)
	return f.count, f.err
}

func (f *fakeLedger) ListOrphans(ctx context.Context, olderThan time.Duration) ([]repositories.OrphanUpload, error) {
	f.lists.Add(1)
	return f.rows, nil
}

func TestOrphanUploadMonitor_Check(t *testing.T) {
	tests := []struct {
		name      string
		ledger    *fakeLedger
		want      int
		wantGauge float64
		wantLists int32
	}{
		{
			name:      "no orphans",
			ledger:    &fakeLedger{},
			want:      0,
			wantGauge: 0,
			wantLists: 0,
		},
		{
			name: "orphans are listed",
			ledger: &fakeLedger{count: 2, rows: []repositories.OrphanUpload{
				{ID: "a", Kind: "image", Stage: "uploaded"},
				{ID: "b", Kind: "logo", Stage: "failed", ErrorCode: "UPLOAD_FINALIZE_FAILED"},
			}},
			want:      2,
			wantGauge: 2,
			wantLists: 1,
		},
		{
			name:      "ledger error leaves the gauge alone",
			ledger:    &fakeLedger{err: errors.New("db down")},
			want:      -1,
			wantGauge: 0,
			wantLists: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
			mon := NewOrphanUploadMonitor(tt.ledger, m, time.Hour)

			if got := mon.Check(context.Background()); got != tt.want {
				t.Errorf("Check() = %d, want %d", got, tt.want)
			}
			if got := testutil.ToFloat64(m.OrphanedUploads); got != tt.wantGauge {
				t.Errorf("gauge = %v, want %v", got, tt.wantGauge)
			}
			if got := tt.ledger.lists.Load(); got != tt.wantLists {
				t.Errorf("ListOrphans called %d times, want %d", got, tt.wantLists)
			}
		})
	}
}

func TestOrphanUploadMonitor_StopsOnCancel(t *testing.T) {
	ledger := &fakeLedger{count: 1}
	mon := NewOrphanUploadMonitor(ledger, nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Start(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for ledger.checks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
	if ledger.checks.Load() < 3 {
		t.Errorf("Expected repeated checks, got %d", ledger.checks.Load())
	}
}

func TestInitWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.OrphanMonitorInterval = 10 * time.Millisecond

	ledger := &fakeLedger{}
	sessions := &fakeSessions{}
	wc := InitWorkers(context.Background(), cfg, ledger, sessions, nil)
	if wc.OrphanMonitor == nil || wc.SessionGauge == nil {
		t.Fatal("Expected both monitors to run")
	}
	wc.Stop()
	if ledger.checks.Load() == 0 || sessions.counts.Load() == 0 {
		t.Error("Expected an immediate check on start")
	}

	// without backends nothing is started, Stop must still return
	wc = InitWorkers(context.Background(), cfg, nil, nil, nil)
	if wc.OrphanMonitor != nil || wc.SessionGauge != nil {
		t.Error("Expected no monitor without backends")
	}
	wc.Stop()
}
