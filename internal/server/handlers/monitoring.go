package handlers

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// MonitoringHandlers contains health and version handlers.
type MonitoringHandlers struct {
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(logger *slog.Logger) *MonitoringHandlers {
	return &MonitoringHandlers{errorAdapter: errors.NewHTTPErrorAdapter(logger)}
}

// HandleHealthCheck always reports ok and is never cached.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	setCacheControl(w, CacheNoStore)
	if err := writeJSON(w, http.StatusOK, responses.HealthResponse{Status: responses.HealthStatusOK}); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write health response").Build())
	}
}

// HandleVersion reports build information.
func (h *MonitoringHandlers) HandleVersion(w http.ResponseWriter, r *http.Request) {
	setCacheControl(w, CacheNoStore)
	resp := responses.VersionResponse{
		Version:   version.Version,
		Commit:    version.GitCommit,
		BuildDate: version.BuildTime,
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to write version response").Build())
	}
}
