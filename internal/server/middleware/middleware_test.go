package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

type observed struct {
	route, method string
	status        int
}

type routeRecorder struct {
	mu   sync.Mutex
	seen []observed
}

func (r *routeRecorder) ObserveRequest(route, method string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observed{route, method, status})
}
func (r *routeRecorder) IncResolveFailures(string, int)         {}
func (r *routeRecorder) SetDocuments(int)                       {}
func (r *routeRecorder) IncSearchQuery(int)                     {}
func (r *routeRecorder) ObserveJob(string, time.Duration, bool) {}
func (r *routeRecorder) IncEventPublish(bool)                   {}

func newChain(buf *bytes.Buffer, rec *routeRecorder) func(http.Handler) http.Handler {
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	return Chain(logger, errors.NewHTTPErrorAdapter(logger), rec)
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	h := newChain(&buf, &routeRecorder{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	var buf bytes.Buffer
	h := newChain(&buf, &routeRecorder{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestLogging_RecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	rr := &routeRecorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/raw/{slug...}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := newChain(&buf, rr)(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/raw/guide/install", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, rr.seen, 2)
	assert.Equal(t, observed{"GET /api/raw/{slug...}", http.MethodGet, http.StatusNotFound}, rr.seen[0])
	assert.Equal(t, "unmatched", rr.seen[1].route)
	assert.Contains(t, buf.String(), `"msg":"HTTP request"`)
	assert.Contains(t, buf.String(), `"status":404`)
}

func TestPanicRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := newChain(&buf, &routeRecorder{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/manifest", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), `"error"`)
	assert.Contains(t, buf.String(), "HTTP handler panic")
}

func TestPanicRecovery_AbortHandlerPropagates(t *testing.T) {
	var buf bytes.Buffer
	h := newChain(&buf, &routeRecorder{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
