package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/search"
	helpers "git.home.luguber.info/inful/docsite/internal/testutil/testutils"
)

func testServer(t *testing.T, mutate func(*config.Config, *Dependencies)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	p := helpers.NewMemoryProvider(
		helpers.Doc("", "Home", "# Home\n"),
		helpers.Doc("guide/install", "Install", "# Install\n\nRun it."),
	)
	deps := Dependencies{
		Provider:    p,
		Manifest:    manifest.NewBuilder(),
		SearchIndex: search.NewBuilder(0),
	}
	if mutate != nil {
		mutate(cfg, &deps)
	}
	ts := httptest.NewServer(New(cfg, deps).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRoutes_CachePolicies(t *testing.T) {
	ts := testServer(t, nil)

	tests := []struct {
		path   string
		status int
		cache  string
	}{
		{"/api/health", http.StatusOK, "no-store"},
		{"/api/manifest", http.StatusOK, "public, max-age=3600, s-maxage=86400"},
		{"/api/search-index", http.StatusOK, "public, max-age=3600, s-maxage=86400"},
		{"/api/raw/guide/install", http.StatusOK, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/guide/install.md", http.StatusOK, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/", http.StatusOK, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/guide/missing", http.StatusNotFound, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/Guide", http.StatusBadRequest, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/guide.md/install", http.StatusBadRequest, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/-guide", http.StatusBadRequest, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
		{"/api/raw/guide%2Finstall", http.StatusBadRequest, "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, _ := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.cache, resp.Header.Get("Cache-Control"))
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestRoutes_RawBody(t *testing.T) {
	ts := testServer(t, nil)
	resp, body := get(t, ts.URL+"/api/raw/guide/install")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "# Install\n\nRun it.", body)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
}

func TestRoutes_ManifestListsDocuments(t *testing.T) {
	ts := testServer(t, nil)
	resp, body := get(t, ts.URL+"/api/manifest")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var m manifest.Manifest
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	var slugs []string
	for _, e := range m.Documents {
		slugs = append(slugs, e.Slug)
	}
	assert.ElementsMatch(t, []string{"", "guide/install"}, slugs)
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	ts := testServer(t, nil)
	resp, err := http.Post(ts.URL+"/api/manifest", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRoutes_SearchOnlyWhenConfigured(t *testing.T) {
	ts := testServer(t, nil)
	resp, _ := get(t, ts.URL+"/api/search?q=install")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	store, err := search.OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Rebuild(context.Background(), []search.Entry{{Slug: "guide/install", Title: "Install", Content: "Run it."}}))

	ts = testServer(t, func(_ *config.Config, d *Dependencies) { d.Searcher = store })
	resp, body := get(t, ts.URL+"/api/search?q=install")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=600, s-maxage=86400", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, `"guide/install"`)
}

func TestRoutes_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	ts := testServer(t, func(c *config.Config, d *Dependencies) {
		c.Metrics.Enabled = true
		d.Recorder = rec
		d.MetricsHandler = metrics.HTTPHandler(reg)
	})

	get(t, ts.URL+"/api/health")
	resp, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `docsite_http_requests_total{method="GET",route="GET /api/health",status="200"} 1`)
}

func TestServer_StartStop(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Address = "127.0.0.1:0"
	srv := New(cfg, Dependencies{
		Provider:    helpers.NewMemoryProvider(),
		Manifest:    manifest.NewBuilder(),
		SearchIndex: search.NewBuilder(0),
	})
	assert.Empty(t, srv.Addr())

	ctx := context.Background()
	require.NoError(t, srv.Start(ctx))
	require.Error(t, srv.Start(ctx))
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	resp, body := get(t, "http://"+addr+"/api/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(stopCtx))
	require.NoError(t, srv.Stop(stopCtx))
}
