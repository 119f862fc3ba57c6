package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sitemap-tools/sitemap-pulse/config"
	"github.com/sitemap-tools/sitemap-pulse/internal/analyzer"
	"github.com/sitemap-tools/sitemap-pulse/internal/models"
	"github.com/sitemap-tools/sitemap-pulse/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, store storage.Store) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Fetcher.Timeout = "5s"
	cfg.Fetcher.UserAgent = "sitemap-pulse-test"
	cfg.Fetcher.MaxBodyBytes = 1 << 20
	cfg.History.Limit = 5
	cfg.Logging.Dir = t.TempDir()

	return NewServer(cfg, store, analyzer.New(cfg))
}

func newHistoryStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Initialize())
	return store
}

func performRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func upstreamSitemap(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// failingStore simulates a broken history database.
type failingStore struct{}

func (f *failingStore) Initialize() error { return nil }
func (f *failingStore) Close() error      { return nil }
func (f *failingStore) RecordUse(ctx context.Context, target *models.Target) error {
	return errors.New("database gone")
}
func (f *failingStore) ListTargets(ctx context.Context, limit int) ([]*models.Target, error) {
	return nil, errors.New("database gone")
}
func (f *failingStore) DeleteTarget(ctx context.Context, id uuid.UUID) error {
	return errors.New("database gone")
}

func TestAnalyzeSitemap(t *testing.T) {
	now := time.Now().UTC()
	xmlData := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url>
		<loc>https://example.com/fresh</loc>
		<lastmod>%s</lastmod>
	</url>
	<url>
		<loc>https://example.com/undated</loc>
	</url>
</urlset>`, now.Add(-2*time.Hour).Format(time.RFC3339))

	upstream := upstreamSitemap(t, xmlData, http.StatusOK)
	store := newHistoryStore(t)
	s := newTestServer(t, store)

	w := performRequest(s, http.MethodPost, "/api/analyze",
		fmt.Sprintf(`{"url": %q, "include_urls": true}`, upstream.URL))

	require.Equal(t, http.StatusOK, w.Code)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.NotEqual(t, uuid.Nil, result.RunID)
	assert.Equal(t, upstream.URL, result.SitemapURL)
	assert.Equal(t, 2, result.TotalEntries)
	assert.Equal(t, 2, result.UniqueURLCount)
	assert.Equal(t, 1, result.MissingLastMod)
	assert.Equal(t, 1, result.Buckets.Last24Hours)
	assert.Equal(t, []string{"https://example.com/fresh", "https://example.com/undated"}, result.URLs)

	// A successful run is remembered in the history
	targets, err := store.ListTargets(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, upstream.URL, targets[0].URL)
}

func TestAnalyzeSitemapValidation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing url", `{}`, "A sitemap URL is required"},
		{"empty url", `{"url": ""}`, "A sitemap URL is required"},
		{"not json", `url=x`, "A sitemap URL is required"},
		{"unsupported scheme", `{"url": "ftp://example.com/sitemap.xml"}`, "absolute http or https"},
		{"relative url", `{"url": "/sitemap.xml"}`, "absolute http or https"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(s, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.want)
		})
	}
}

func TestAnalyzeSitemapFetchFailure(t *testing.T) {
	upstream := upstreamSitemap(t, "gone", http.StatusNotFound)
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodPost, "/api/analyze",
		fmt.Sprintf(`{"url": %q}`, upstream.URL))

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "404")
}

func TestAnalyzeSitemapParseFailure(t *testing.T) {
	upstream := upstreamSitemap(t, "this is not xml", http.StatusOK)
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodPost, "/api/analyze",
		fmt.Sprintf(`{"url": %q}`, upstream.URL))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "parse sitemap")
}

func TestAnalyzeSitemapIndexRejected(t *testing.T) {
	upstream := upstreamSitemap(t, `<?xml version="1.0"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<sitemap><loc>https://example.com/sitemap1.xml</loc></sitemap>
</sitemapindex>`, http.StatusOK)
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodPost, "/api/analyze",
		fmt.Sprintf(`{"url": %q}`, upstream.URL))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "sitemap index")
}

func TestAnalyzeSitemapStoreFailure(t *testing.T) {
	upstream := upstreamSitemap(t, `<?xml version="1.0"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/page</loc></url>
</urlset>`, http.StatusOK)
	s := newTestServer(t, &failingStore{})

	// A broken history store must never fail the analysis itself
	w := performRequest(s, http.MethodPost, "/api/analyze",
		fmt.Sprintf(`{"url": %q}`, upstream.URL))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListRecentTargets(t *testing.T) {
	store := newHistoryStore(t)
	ctx := context.Background()
	for _, url := range []string{
		"https://a.example.com/sitemap.xml",
		"https://b.example.com/sitemap.xml",
		"https://c.example.com/sitemap.xml",
	} {
		require.NoError(t, store.RecordUse(ctx, models.NewTarget(url)))
		time.Sleep(10 * time.Millisecond)
	}

	s := newTestServer(t, store)

	w := performRequest(s, http.MethodGet, "/api/recent", "")
	require.Equal(t, http.StatusOK, w.Code)

	var targets []*models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &targets))
	require.Len(t, targets, 3)
	assert.Equal(t, "https://c.example.com/sitemap.xml", targets[0].URL)

	w = performRequest(s, http.MethodGet, "/api/recent?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &targets))
	assert.Len(t, targets, 2)

	// Out-of-range and junk limits fall back to the configured default
	for _, query := range []string{"?limit=0", "?limit=9000", "?limit=abc"} {
		w = performRequest(s, http.MethodGet, "/api/recent"+query, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &targets))
		assert.Len(t, targets, 3)
	}
}

func TestListRecentTargetsDisabled(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodGet, "/api/recent", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListRecentTargetsStoreError(t *testing.T) {
	s := newTestServer(t, &failingStore{})

	w := performRequest(s, http.MethodGet, "/api/recent", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDeleteTarget(t *testing.T) {
	store := newHistoryStore(t)
	ctx := context.Background()

	target := models.NewTarget("https://example.com/sitemap.xml")
	require.NoError(t, store.RecordUse(ctx, target))

	s := newTestServer(t, store)

	w := performRequest(s, http.MethodDelete, "/api/recent/"+target.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "deleted"}`, w.Body.String())

	targets, err := store.ListTargets(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestDeleteTargetInvalidID(t *testing.T) {
	s := newTestServer(t, newHistoryStore(t))

	w := performRequest(s, http.MethodDelete, "/api/recent/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTargetDisabled(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodDelete, "/api/recent/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTargetStoreError(t *testing.T) {
	s := newTestServer(t, &failingStore{})

	w := performRequest(s, http.MethodDelete, "/api/recent/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Sitemap Pulse")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := performRequest(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sitemap_pulse_analyses_total")
}
