package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
)

// Searcher answers full-text queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Hit, error)
}

// SearchHandlers serves server-side search.
type SearchHandlers struct {
	searcher     Searcher
	recorder     metrics.Recorder
	errorAdapter *errors.HTTPErrorAdapter
}

// NewSearchHandlers creates search handlers. A nil recorder disables metrics.
func NewSearchHandlers(searcher Searcher, recorder metrics.Recorder, logger *slog.Logger) *SearchHandlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &SearchHandlers{searcher: searcher, recorder: recorder, errorAdapter: errors.NewHTTPErrorAdapter(logger)}
}

// HandleSearch answers GET /api/search?q=<terms>&limit=<n>.
func (h *SearchHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("query parameter q is required").Build())
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			setCacheControl(w, CacheNoStore)
			h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build())
			return
		}
		limit = n
	}

	hits, err := h.searcher.Search(r.Context(), query, limit)
	if err != nil {
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategorySearch, "search failed").
			WithContext("query", query).
			Build())
		return
	}
	h.recorder.IncSearchQuery(len(hits))

	body, err := encodeJSON(responses.SearchResponse{Query: query, Count: len(hits), Hits: hits})
	if err != nil {
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to encode search response").Build())
		return
	}
	writeCacheable(w, r, CacheSearch, contentTypeJSON, body)
}
