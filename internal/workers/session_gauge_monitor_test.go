package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"koomy/portal/internal/metrics"
)

type fakeSessions struct {
	live   atomic.Int64
	err    error
	counts atomic.Int32
}

func (f *fakeSessions) Count(ctx context.Context) (int, error) {
	f.counts.Add(1)
	return int(f.live.Load()), f.err
}

func TestSessionGaugeMonitor_FollowsExpiry(t *testing.T) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	sessions := &fakeSessions{}
	mon := NewSessionGaugeMonitor(sessions, m)

	sessions.live.Store(3)
	if got := mon.Check(context.Background()); got != 3 {
		t.Fatalf("Check() = %d, want 3", got)
	}
	if got := testutil.ToFloat64(m.SessionsActive); got != 3 {
		t.Errorf("gauge = %v, want 3", got)
	}

	// two sessions expire without a logout
	sessions.live.Store(1)
	mon.Check(context.Background())
	if got := testutil.ToFloat64(m.SessionsActive); got != 1 {
		t.Errorf("gauge = %v after expiry, want 1", got)
	}
}

func TestSessionGaugeMonitor_ErrorKeepsLastValue(t *testing.T) {
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	sessions := &fakeSessions{}
	sessions.live.Store(2)
	mon := NewSessionGaugeMonitor(sessions, m)
	mon.Check(context.Background())

	sessions.err = errors.New("redis down")
	if got := mon.Check(context.Background()); got != -1 {
		t.Errorf("Check() = %d, want -1", got)
	}
	if got := testutil.ToFloat64(m.SessionsActive); got != 2 {
		t.Errorf("gauge = %v, want the last good count 2", got)
	}
}
