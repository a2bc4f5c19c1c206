package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsRegistry_IsolatedRegistries(t *testing.T) {
	a := NewMetricsRegistry(prometheus.NewRegistry())
	b := NewMetricsRegistry(prometheus.NewRegistry())

	a.CacheHit("white-label-config")
	a.CacheHit("white-label-config")
	b.CacheMiss("query")

	if got := testutil.ToFloat64(a.CacheHitsTotal.WithLabelValues("white-label-config")); got != 2 {
		t.Errorf("Expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(b.CacheMissesTotal.WithLabelValues("query")); got != 1 {
		t.Errorf("Expected 1 miss, got %v", got)
	}
}

func TestMetricsRegistry_NilSafe(t *testing.T) {
	var m *MetricsRegistry
	m.CacheHit("x")
	m.CacheMiss("x")
	m.Upload("image", "finalized")
}
