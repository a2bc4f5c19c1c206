package workers

import (
	"context"
	"sync"

	"koomy/portal/internal/config"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
)

// WorkersContainer tracks the background goroutines of the portal
type WorkersContainer struct {
	OrphanMonitor *OrphanUploadMonitor
	SessionGauge  *SessionGaugeMonitor

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// InitWorkers starts the background workers. A nil ledger disables the
// orphan monitor and nil sessions disable the session gauge.
func InitWorkers(ctx context.Context, cfg *config.Config, ledger OrphanReporter, sessions SessionCounter, m *metrics.MetricsRegistry) *WorkersContainer {
	ctx, cancel := context.WithCancel(ctx)
	wc := &WorkersContainer{cancel: cancel}

	if ledger != nil && cfg.OrphanMonitorInterval > 0 {
		wc.OrphanMonitor = NewOrphanUploadMonitor(ledger, m, cfg.OrphanAfter)
		wc.wg.Add(1)
		go func() {
			defer wc.wg.Done()
			wc.OrphanMonitor.Start(ctx, cfg.OrphanMonitorInterval)
		}()
	} else {
		logging.Info("Orphan upload monitor disabled")
	}

	if sessions != nil && cfg.SessionGaugeInterval > 0 {
		wc.SessionGauge = NewSessionGaugeMonitor(sessions, m)
		wc.wg.Add(1)
		go func() {
			defer wc.wg.Done()
			wc.SessionGauge.Start(ctx, cfg.SessionGaugeInterval)
		}()
	}

	return wc
}

// Stop cancels every worker and waits for them to return
func (wc *WorkersContainer) Stop() {
	wc.cancel()
	wc.wg.Wait()
}
