package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Cache-Control policies per endpoint.
const (
	CacheNoStore     = "no-store"
	CacheManifest    = "public, max-age=3600, s-maxage=86400"
	CacheSearchIndex = "public, max-age=3600, s-maxage=86400"
	CacheRaw         = "public, max-age=600, s-maxage=86400, stale-while-revalidate=604800"
	CacheSearch      = "public, max-age=600, s-maxage=86400"
)

func setCacheControl(w http.ResponseWriter, policy string) {
	w.Header().Set("Cache-Control", policy)
}

// ETag returns the strong entity tag for body.
func ETag(body []byte) string {
	return `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
}

// etagMatches reports whether an If-None-Match header value matches etag.
// Weak comparison applies, as required for If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// writeCacheable writes a 200 response with the given policy and an ETag.
// A request whose If-None-Match matches gets 304 with the same policy.
func writeCacheable(w http.ResponseWriter, r *http.Request, policy, contentType string, body []byte) {
	etag := ETag(body)
	h := w.Header()
	h.Set("Cache-Control", policy)
	h.Set("ETag", etag)

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.Set("Content-Type", contentType)
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Debug("failed writing response body", logfields.Path(r.URL.Path), logfields.Error(err))
	}
}
