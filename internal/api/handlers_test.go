package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"koomy/portal/internal/auth"
	"koomy/portal/internal/branding"
	"koomy/portal/internal/common"
	"koomy/portal/internal/constants"
	"koomy/portal/internal/metrics"
	"koomy/portal/internal/models/dtos"
	"koomy/portal/internal/models/entities"
	"koomy/portal/internal/providers"
	"koomy/portal/internal/services"
	"koomy/portal/internal/session"
)

func strPtr(s string) *string { return &s }

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return env
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthCheckHandler(t *testing.T) {
	upSince := time.Now().Add(-time.Minute)

	rr := httptest.NewRecorder()
	HealthCheckHandler(map[string]Pinger{"ledger": fakePinger{}}, upSince).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	HealthCheckHandler(map[string]Pinger{
		"ledger": fakePinger{},
		"redis":  fakePinger{err: errors.New("connection refused")},
	}, upSince).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rr.Code)
	}
	var resp entities.HealthCheckResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.Status != "down" || resp.Services["redis"].Details != "connection refused" {
		t.Errorf("Unexpected health response: %+v", resp)
	}
}

func TestHeadHandler(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantFavicon  string
		wantManifest string
	}{
		{"pro host", "http://app-pro.koomy.app/branding/head", "/favicon-pro.ico", "/manifest-pro.json"},
		{"platform path", "http://platform.example.com/branding/head?path=/platform/dashboard", "/favicon-pro.ico", "/manifest.json"},
		{"admin path", "http://club.example.com/branding/head?path=/admin/members", "/favicon-pro.ico", "/manifest-pro.json"},
		{"member surface", "http://club.example.com/branding/head?path=/app/news", "/favicon.ico", "/manifest.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HeadHandler(branding.DefaultResolver()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.url, nil))

			env := decodeEnvelope(t, rr)
			var head HeadResponse
			if err := json.Unmarshal(env.Data, &head); err != nil {
				t.Fatalf("Failed to decode head: %v", err)
			}
			if head.Assets.Favicon != tt.wantFavicon || head.Assets.Manifest != tt.wantManifest {
				t.Errorf("assets = %+v", head.Assets)
			}
			for _, l := range head.Links {
				if l.Rel == "manifest" && l.Href != tt.wantManifest {
					t.Errorf("manifest link = %q, want %q", l.Href, tt.wantManifest)
				}
			}
		})
	}
}

type fakeFetcher struct {
	cfg *dtos.WhiteLabelConfig
	err error
}

func (f *fakeFetcher) GetWhiteLabelConfig(context.Context, string) (*dtos.WhiteLabelConfig, error) {
	return f.cfg, f.err
}

func newWL(f services.WhiteLabelFetcher) *services.WhiteLabelService {
	return services.NewWhiteLabelService(f, common.NewCacheService(time.Minute, time.Minute), 5*time.Minute,
		metrics.NewMetricsRegistry(prometheus.NewRegistry()))
}

func TestThemeHandler_FetchFailureFallsBack(t *testing.T) {
	wl := newWL(&fakeFetcher{err: errors.New("boom")})

	rr := httptest.NewRecorder()
	ThemeHandler(wl).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://club.example.com/branding/theme", nil))

	env := decodeEnvelope(t, rr)
	var theme ThemeResponse
	if err := json.Unmarshal(env.Data, &theme); err != nil {
		t.Fatalf("Failed to decode theme: %v", err)
	}
	if theme.Display.IsWhiteLabel || theme.ConfigLoaded {
		t.Errorf("Expected non white-label fallback, got %+v", theme)
	}
	if theme.Display.AppName != constants.DefaultAppName {
		t.Errorf("AppName = %q", theme.Display.AppName)
	}
	if strings.Contains(theme.CSS, "--brand") {
		t.Errorf("No property should be written, got %q", theme.CSS)
	}
}

func TestThemeCSSHandler_WhiteLabel(t *testing.T) {
	wl := newWL(&fakeFetcher{cfg: &dtos.WhiteLabelConfig{
		WhiteLabel:  true,
		BrandConfig: &dtos.BrandConfig{BrandColor: strPtr("#FF0000")},
	}})

	rr := httptest.NewRecorder()
	ThemeCSSHandler(wl).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://club.example.com/branding/theme.css", nil))

	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("Content-Type = %q", ct)
	}
	css := rr.Body.String()
	for _, want := range []string{"--brand-h: 0;", "--brand-s: 100%;", "--brand-l: 50%;", "--brand-color: #FF0000;"} {
		if !strings.Contains(css, want) {
			t.Errorf("css missing %q:\n%s", want, css)
		}
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"upload validation", &services.UploadError{Code: constants.ErrCodeFileTooLarge, Message: "too big"}, http.StatusBadRequest, constants.ErrCodeFileTooLarge},
		{"upload step", &services.UploadError{Code: constants.ErrCodeUploadFinalize, Message: "x"}, http.StatusBadGateway, constants.ErrCodeUploadFinalize},
		{"upstream 404", fmt.Errorf("wrap: %w", &providers.ProviderError{Code: constants.ErrCodeNotFound, Message: "News not found", Status: 404}), http.StatusNotFound, constants.ErrCodeNotFound},
		{"network", &providers.ProviderError{Code: constants.ErrCodeNetworkError, Message: "down"}, http.StatusBadGateway, constants.ErrCodeNetworkError},
		{"no session", services.ErrNoSession, http.StatusUnauthorized, constants.ErrCodeNoSession},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handleServiceError(rr, time.Now(), tt.err)
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if env := decodeEnvelope(t, rr); env.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", env.Code, tt.wantErr)
			}
		})
	}
}

// Mock upload API counting upstream calls
type countingUploadAPI struct {
	calls int32
}

func (c *countingUploadAPI) RequestUploadSlot(context.Context, constants.UploadKind, string) (*dtos.UploadSlotResponse, error) {
	atomic.AddInt32(&c.calls, 1)
	return &dtos.UploadSlotResponse{UploadURL: "https://storage/put/1"}, nil
}

func (c *countingUploadAPI) PutObject(context.Context, string, string, []byte) error {
	atomic.AddInt32(&c.calls, 1)
	return nil
}

func (c *countingUploadAPI) FinalizeUpload(context.Context, constants.UploadKind, string) (*dtos.FinalizeUploadResponse, error) {
	atomic.AddInt32(&c.calls, 1)
	return &dtos.FinalizeUploadResponse{ObjectPath: "/objects/uploads/1.png"}, nil
}

func multipartBody(t *testing.T, contentType string, size int) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(bytes.Repeat([]byte{0x89}, size)); err != nil {
		t.Fatal(err)
	}
	_ = mw.WriteField("folder", "news")
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return body, mw.FormDataContentType()
}

func uploadRouter(svc *services.UploadService) http.Handler {
	r := chi.NewRouter()
	r.Post("/uploads/{kind}", UploadHandler(svc, constants.MaxUploadBytes))
	return r
}

func TestUploadHandler(t *testing.T) {
	tests := []struct {
		name        string
		kind        string
		contentType string
		size        int
		wantStatus  int
		wantCode    string
		wantCalls   int32
	}{
		{"image ok", "image", "image/png", 1024, http.StatusCreated, "", 3},
		{"text file", "image", "text/plain", 1024, http.StatusBadRequest, constants.ErrCodeInvalidFileType, 0},
		{"just over limit", "logo", "image/png", constants.MaxUploadBytes + 1, http.StatusBadRequest, constants.ErrCodeFileTooLarge, 0},
		{"6 MiB", "image", "image/jpeg", 6 << 20, http.StatusBadRequest, constants.ErrCodeFileTooLarge, 0},
		{"unknown kind", "video", "image/png", 10, http.StatusBadRequest, constants.ErrCodeInvalidKind, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &countingUploadAPI{}
			svc := services.NewUploadService(api, nil, constants.MaxUploadBytes, nil)

			body, ct := multipartBody(t, tt.contentType, tt.size)
			req := httptest.NewRequest(http.MethodPost, "/uploads/"+tt.kind, body)
			req.Header.Set("Content-Type", ct)
			rr := httptest.NewRecorder()
			uploadRouter(svc).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if env := decodeEnvelope(t, rr); tt.wantCode != "" && env.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Code, tt.wantCode)
			}
			if got := atomic.LoadInt32(&api.calls); got != tt.wantCalls {
				t.Errorf("upstream calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

// Mock community API, only the methods a test sets are usable
type mockCommunityAPI struct {
	services.CommunityAPI
	listNewsFunc   func(ctx context.Context, communityID string) ([]dtos.NewsArticle, error)
	createNewsFunc func(ctx context.Context, article dtos.NewsArticle) (*dtos.NewsArticle, error)
}

func (m *mockCommunityAPI) ListNews(ctx context.Context, communityID string) ([]dtos.NewsArticle, error) {
	return m.listNewsFunc(ctx, communityID)
}

func (m *mockCommunityAPI) CreateNews(ctx context.Context, article dtos.NewsArticle) (*dtos.NewsArticle, error) {
	return m.createNewsFunc(ctx, article)
}

func withMembership(req *http.Request, communityID string) *http.Request {
	state := session.Snapshot{
		User:              &dtos.User{ID: "u1"},
		CurrentMembership: &dtos.Membership{ID: "m1", CommunityID: communityID, Role: constants.RoleAdmin},
		Token:             "tok-1",
	}
	return req.WithContext(auth.SetSession(req.Context(), &common.SessionData{SessionID: "s1", State: state}, nil))
}

func TestListNewsHandler_ScopedToActiveCommunity(t *testing.T) {
	var gotCommunity string
	svc := services.NewCommunityService(&mockCommunityAPI{
		listNewsFunc: func(ctx context.Context, communityID string) ([]dtos.NewsArticle, error) {
			gotCommunity = communityID
			return nil, nil
		},
	})

	rr := httptest.NewRecorder()
	ListNewsHandler(svc).ServeHTTP(rr, withMembership(httptest.NewRequest(http.MethodGet, "/community/news", nil), "c1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if gotCommunity != "c1" {
		t.Errorf("community = %q, want c1", gotCommunity)
	}
	if env := decodeEnvelope(t, rr); string(env.Data) != "[]" {
		t.Errorf("Expected empty list, got %s", env.Data)
	}
}

func TestPublishNewsHandler(t *testing.T) {
	var got dtos.NewsArticle
	svc := services.NewCommunityService(&mockCommunityAPI{
		createNewsFunc: func(ctx context.Context, article dtos.NewsArticle) (*dtos.NewsArticle, error) {
			got = article
			article.ID = "n1"
			return &article, nil
		},
	})
	h := PublishNewsHandler(svc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, withMembership(httptest.NewRequest(http.MethodPost, "/community/news", strings.NewReader(`{"title":""}`)), "c1"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing title, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	body := `{"title":"AGM","content":"Saturday","communityId":"someone-else"}`
	h.ServeHTTP(rr, withMembership(httptest.NewRequest(http.MethodPost, "/community/news", strings.NewReader(body)), "c1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.CommunityID != "c1" {
		t.Errorf("article pinned to %q, want c1", got.CommunityID)
	}
	if got.AuthorID == nil || *got.AuthorID != "u1" {
		t.Errorf("author = %v, want u1", got.AuthorID)
	}
}
