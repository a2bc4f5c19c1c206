package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
	"koomy/portal/internal/models/dtos"
)

// WhiteLabelFetcher loads the white-label configuration for a host
type WhiteLabelFetcher interface {
	GetWhiteLabelConfig(ctx context.Context, host string) (*dtos.WhiteLabelConfig, error)
}

// WhiteLabelService memoises one white-label config per hostname. Entries go
// stale after the configured window and are then refetched on next read; a
// failed fetch is never cached nor retried.
type WhiteLabelService struct {
	fetcher WhiteLabelFetcher
	cache   common.CacheInterface
	ttl     time.Duration
	metrics *metrics.MetricsRegistry

	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]int
	binders  map[string]*branding.ThemeBinder
}

func NewWhiteLabelService(fetcher WhiteLabelFetcher, cache common.CacheInterface, ttl time.Duration, m *metrics.MetricsRegistry) *WhiteLabelService {
	if ttl <= 0 {
		ttl = constants.WhiteLabelStaleAfter
	}
	return &WhiteLabelService{
		fetcher:  fetcher,
		cache:    cache,
		ttl:      ttl,
		metrics:  m,
		inflight: make(map[string]int),
		binders:  make(map[string]*branding.ThemeBinder),
	}
}

func whiteLabelKey(host string) string {
	return string(constants.CachePrefixWhiteLabel) + strings.ToLower(host)
}

// Load returns the configuration for host, fetching it when absent or stale.
// Concurrent loads of the same host share one upstream call.
func (s *WhiteLabelService) Load(ctx context.Context, host string) (*dtos.WhiteLabelConfig, error) {
	key := whiteLabelKey(host)

	var cfg dtos.WhiteLabelConfig
	if common.GetJSON(s.cache, key, &cfg) {
		s.metrics.CacheHit(string(constants.CachePrefixWhiteLabel))
		return &cfg, nil
	}
	s.metrics.CacheMiss(string(constants.CachePrefixWhiteLabel))

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		s.track(host, 1)
		defer s.track(host, -1)

		// the first caller going away must not fail the others waiting on it
		loaded, err := s.fetcher.GetWhiteLabelConfig(context.WithoutCancel(ctx), host)
		if err != nil {
			return nil, err
		}
		if err := common.SetJSON(s.cache, key, loaded, s.ttl); err != nil {
			logging.Warn("Failed to cache white-label config", "host", host, "error", err)
		}
		return loaded, nil
	})
	if err != nil {
		if s.metrics != nil && !shared {
			s.metrics.WhiteLabelFetchFailures.Inc()
		}
		logging.Warn("White-label config unavailable", "host", host, "error", err)
		return nil, fmt.Errorf("load white-label config for %s: %w", host, err)
	}

	out := *v.(*dtos.WhiteLabelConfig)
	return &out, nil
}

// Display derives the branding for host. On failure the Koomy defaults are
// returned along with the error, so IsWhiteLabel is false.
func (s *WhiteLabelService) Display(ctx context.Context, host string) (branding.Display, error) {
	cfg, err := s.Load(ctx, host)
	if err != nil {
		return branding.DeriveDisplay(nil), err
	}
	return branding.DeriveDisplay(cfg), nil
}

// Theme returns the display and the root style carrying the brand custom
// properties. Non white-label hosts get an empty style.
func (s *WhiteLabelService) Theme(ctx context.Context, host string) (branding.Display, *branding.RootStyle, error) {
	d, err := s.Display(ctx, host)
	if !d.IsWhiteLabel {
		s.dropBinder(host)
		return d, branding.NewRootStyle(), err
	}
	tb := s.binder(host)
	tb.Apply(d)
	return d, tb.Style(), err
}

// IsLoading reports whether a fetch for host is in flight
func (s *WhiteLabelService) IsLoading(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[strings.ToLower(host)] > 0
}

// Refresh drops the memoised entry for host and loads it again
func (s *WhiteLabelService) Refresh(ctx context.Context, host string) (*dtos.WhiteLabelConfig, error) {
	s.cache.Delete(whiteLabelKey(host))
	s.dropBinder(host)
	return s.Load(ctx, host)
}

func (s *WhiteLabelService) track(host string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := strings.ToLower(host)
	s.inflight[h] += delta
	if s.inflight[h] <= 0 {
		delete(s.inflight, h)
	}
}

// binder returns the theme binder of host. Creating one first prunes binders
// whose config has left the cache, so the map never outlives cached hosts.
func (s *WhiteLabelService) binder(host string) *branding.ThemeBinder {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := strings.ToLower(host)
	tb, ok := s.binders[h]
	if !ok {
		for other := range s.binders {
			if _, cached := s.cache.Get(whiteLabelKey(other)); !cached {
				delete(s.binders, other)
			}
		}
		tb = branding.NewThemeBinder(branding.NewRootStyle())
		s.binders[h] = tb
	}
	return tb
}

func (s *WhiteLabelService) dropBinder(host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.binders, strings.ToLower(host))
}
