package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"hash/fnv"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/logging"
	"koomy/portal/internal/metrics"
)

type ctxKey string

const (
	bearerKey        ctxKey = "koomy.bearer"
	forwardedHostKey ctxKey = "koomy.forwarded_host"
)

// WithBearer attaches the upstream token of the current session to ctx
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey, token)
}

// WithForwardedHost attaches the browser-facing hostname to ctx
func WithForwardedHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, forwardedHostKey, host)
}

func bearerFrom(ctx context.Context) string {
	v, _ := ctx.Value(bearerKey).(string)
	return v
}

func forwardedHostFrom(ctx context.Context) string {
	v, _ := ctx.Value(forwardedHostKey).(string)
	return v
}

// KoomyAPIProvider is the typed client for the Koomy REST API. Reads go
// through a tag-scoped query cache and every mutation invalidates its tag.
type KoomyAPIProvider struct {
	BaseURL  string
	Client   *http.Client
	Cache    common.CacheInterface
	CacheTTL time.Duration
	Metrics  *metrics.MetricsRegistry
	// Debug dumps every outgoing request
	Debug bool
}

// NewKoomyAPIProvider creates a provider. A nil cache disables read caching.
func NewKoomyAPIProvider(baseURL string, timeout time.Duration, cache common.CacheInterface, cacheTTL time.Duration, m *metrics.MetricsRegistry) *KoomyAPIProvider {
	return &KoomyAPIProvider{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   &http.Client{Timeout: timeout},
		Cache:    cache,
		CacheTTL: cacheTTL,
		Metrics:  m,
	}
}

// GetProviderType returns the provider type identifier
func (p *KoomyAPIProvider) GetProviderType() string {
	return "koomy_rest_api"
}

func tagPrefix(tag constants.CacheTag) string {
	return string(constants.CachePrefixQuery) + string(tag) + ":"
}

// cacheKey scopes cached reads to the caller's token so members never see
// each other's views
func cacheKey(ctx context.Context, tag constants.CacheTag, endpoint string) string {
	scope := "public"
	if tok := bearerFrom(ctx); tok != "" {
		h := fnv.New64a()
		h.Write([]byte(tok))
		scope = strconv.FormatUint(h.Sum64(), 36)
	}
	return tagPrefix(tag) + scope + ":" + endpoint
}

// Invalidate drops every cached read of the given tags
func (p *KoomyAPIProvider) Invalidate(tags ...constants.CacheTag) {
	if p.Cache == nil {
		return
	}
	for _, tag := range tags {
		n := p.Cache.DeletePrefix(tagPrefix(tag))
		logging.Debug("Invalidated query cache", "tag", string(tag), "entries", n)
	}
}

// cachedGET serves endpoint from the query cache or fetches and stores it
func (p *KoomyAPIProvider) cachedGET(ctx context.Context, tag constants.CacheTag, endpoint string, result any) error {
	if p.Cache == nil {
		_, err := p.do(ctx, http.MethodGet, endpoint, nil, result)
		return err
	}

	key := cacheKey(ctx, tag, endpoint)
	pattern := string(constants.CachePrefixQuery) + string(tag)
	fetched := false
	val, err := p.Cache.GetOrSet(key, p.CacheTTL, func() (any, error) {
		fetched = true
		var raw json.RawMessage
		if _, err := p.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	if fetched {
		p.Metrics.CacheMiss(pattern)
	} else {
		p.Metrics.CacheHit(pattern)
	}

	if err := common.DecodeJSON(val, result); err != nil {
		p.Cache.Delete(key)
		return &ProviderError{
			Code:    constants.ErrCodeDecodeError,
			Message: constants.GetErrorMessage(constants.ErrCodeDecodeError),
			Err:     err,
		}
	}
	return nil
}

// mutate performs a write and, once it succeeded, invalidates the tags it affects
func (p *KoomyAPIProvider) mutate(ctx context.Context, method, endpoint string, payload, result any, tags ...constants.CacheTag) error {
	if _, err := p.do(ctx, method, endpoint, payload, result); err != nil {
		return err
	}
	p.Invalidate(tags...)
	return nil
}

// do performs a JSON request against the API and decodes a 2xx body into result
func (p *KoomyAPIProvider) do(ctx context.Context, method, endpoint string, payload, result any) (int, error) {
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return 0, &ProviderError{
				Code:    constants.ErrCodeValidation,
				Message: "Failed to marshal request body",
				Err:     err,
			}
		}
		body = bytes.NewReader(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+endpoint, body)
	if err != nil {
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := bearerFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if host := forwardedHostFrom(ctx); host != "" {
		req.Host = host
		req.Header.Set("X-Forwarded-Host", host)
	}
	if p.Debug {
		common.LogHTTPRequest(req)
	}

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		p.observe(method, "error", start)
		return 0, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()
	p.observe(method, strconv.Itoa(resp.StatusCode), start)

	// Read body for potential error messages
	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to read response body",
			Status:  resp.StatusCode,
			Err:     readErr,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, buildHTTPError(resp.StatusCode, endpoint, bodyBytes)
	}

	if result == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return resp.StatusCode, &ProviderError{
			Code:    constants.ErrCodeDecodeError,
			Message: constants.GetErrorMessage(constants.ErrCodeDecodeError),
			Details: truncate(string(bodyBytes), 512),
			Err:     err,
		}
	}
	return resp.StatusCode, nil
}

func (p *KoomyAPIProvider) observe(method, status string, start time.Time) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.UpstreamRequestsTotal.WithLabelValues(method, status).Inc()
	p.Metrics.UpstreamRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
