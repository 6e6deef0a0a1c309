package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/version"
)

func TestHandleHealthCheck_Constant(t *testing.T) {
	h := NewMonitoringHandlers(nil)

	for range 3 {
		rec := httptest.NewRecorder()
		h.HandleHealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestHandleVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMonitoringHandlers(nil).HandleVersion(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp responses.VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, version.Version, resp.Version)
}
