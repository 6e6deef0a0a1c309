package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
)

type stubSearcher struct {
	hits      []search.Hit
	err       error
	lastQuery string
	lastLimit int
}

func (s *stubSearcher) Search(_ context.Context, query string, limit int) ([]search.Hit, error) {
	s.lastQuery, s.lastLimit = query, limit
	return s.hits, s.err
}

func TestHandleSearch(t *testing.T) {
	stub := &stubSearcher{hits: []search.Hit{{Slug: "guide/install", Title: "Install", Score: 10}}}
	h := NewSearchHandlers(stub, nil, nil)
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=+install+&limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CacheSearch, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "install", stub.lastQuery)
	assert.Equal(t, 5, stub.lastLimit)

	var resp responses.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "guide/install", resp.Hits[0].Slug)
}

func TestHandleSearch_BadRequests(t *testing.T) {
	h := NewSearchHandlers(&stubSearcher{}, nil, nil)
	for _, target := range []string{"/api/search", "/api/search?q=%20", "/api/search?q=x&limit=abc", "/api/search?q=x&limit=0"} {
		rec := httptest.NewRecorder()
		h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, CacheNoStore, rec.Header().Get("Cache-Control"), target)
	}
}

func TestHandleSearch_SearcherFailure(t *testing.T) {
	h := NewSearchHandlers(&stubSearcher{err: errors.New("db locked")}, nil, nil)
	rec := httptest.NewRecorder()

	h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, CacheNoStore, rec.Header().Get("Cache-Control"))
}
