package errors

import (
	"encoding/json"
	"log/slog"
	"maps"
	"net/http"
)

// HTTPErrorResponse is the JSON body of every error response.
type HTTPErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// HTTPErrorAdapter writes classified errors as JSON responses and logs them.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter returns an adapter logging to logger, or to slog.Default when nil.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// StatusCodeFor maps err to a response status. Unclassified errors are 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch c.Category() {
	case CategoryValidation, CategoryConfig:
		return http.StatusBadRequest
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryEvents:
		return http.StatusBadGateway
	case CategoryRuntime:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FormatErrorResponse builds the payload for err. Only the message of a
// classified error is exposed; causes stay in the log.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	if err == nil {
		return HTTPErrorResponse{}
	}
	c, ok := AsClassified(err)
	if !ok {
		return HTTPErrorResponse{Error: err.Error()}
	}
	resp := HTTPErrorResponse{
		Error:     c.Message(),
		Code:      string(c.Category()),
		Retryable: c.CanRetry(),
	}
	if len(c.Context()) > 0 || resp.Retryable {
		resp.Details = make(map[string]any, len(c.Context())+1)
		maps.Copy(resp.Details, c.Context())
		if resp.Retryable {
			resp.Details["retryable"] = true
		}
	}
	return resp
}

// WriteErrorResponse writes err as JSON with its mapped status. Headers
// already set by the caller, such as Cache-Control, are preserved.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	status := a.StatusCodeFor(err)

	body, jerr := json.Marshal(a.FormatErrorResponse(err))
	if jerr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	attrs := []any{
		slog.Int("status", status),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	}
	if c, ok := AsClassified(err); ok {
		a.logger.Log(r.Context(), levelFor(c.Severity()), c.Message(),
			append(attrs, slog.String("category", string(c.Category())))...)
		return
	}
	a.logger.ErrorContext(r.Context(), "unclassified error", attrs...)
}
