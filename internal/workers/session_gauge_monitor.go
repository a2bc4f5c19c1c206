package workers

import (
	"context"
	"time"

	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
)

// SessionCounter is the part of the session repository the gauge reads
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// SessionGaugeMonitor recounts stored sessions so the active sessions gauge
// follows TTL expiry as well as logins and logouts
type SessionGaugeMonitor struct {
	sessions SessionCounter
	metrics  *metrics.MetricsRegistry
}

func NewSessionGaugeMonitor(sessions SessionCounter, m *metrics.MetricsRegistry) *SessionGaugeMonitor {
	return &SessionGaugeMonitor{sessions: sessions, metrics: m}
}

// Start publishes the count immediately and then on every tick until ctx is done
func (m *SessionGaugeMonitor) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Session gauge monitor starting", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Session gauge monitor shutting down")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check sets the gauge and returns the count, or -1 when counting failed.
// The gauge keeps its last value on failure.
func (m *SessionGaugeMonitor) Check(ctx context.Context) int {
	n, err := m.sessions.Count(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn("Failed to count sessions", "error", err)
		}
		return -1
	}
	if m.metrics != nil {
		m.metrics.SessionsActive.Set(float64(n))
	}
	return n
}
