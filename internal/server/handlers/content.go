package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// SlugPathValue is the route wildcard holding the raw document slug.
const SlugPathValue = "slug"

const notFoundBody = "not found"

var errEncodedSeparator = stderrors.New("encoded path separator inside a slug segment")

// ContentOptions configures ContentHandlers.
type ContentOptions struct {
	// BaseDir is handed to every Provider.Resolve call.
	BaseDir  string
	Resolve  docs.ResolveOptions
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// ContentHandlers serves raw documents, the manifest and the search index.
type ContentHandlers struct {
	provider     docs.Provider
	manifest     docs.ManifestBuilder
	index        docs.SearchIndexBuilder
	opts         ContentOptions
	recorder     metrics.Recorder
	logger       *slog.Logger
	errorAdapter *errors.HTTPErrorAdapter
}

// NewContentHandlers creates content handlers over provider and the two builders.
func NewContentHandlers(provider docs.Provider, manifest docs.ManifestBuilder, index docs.SearchIndexBuilder, opts ContentOptions) *ContentHandlers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &ContentHandlers{
		provider:     provider,
		manifest:     manifest,
		index:        index,
		opts:         opts,
		recorder:     recorder,
		logger:       logger,
		errorAdapter: errors.NewHTTPErrorAdapter(logger),
	}
}

// rawSegments splits the slug wildcard. The root route has no wildcard and
// yields an empty sequence. The wildcard is already unescaped, so a %2F in
// the request path would otherwise become a segment boundary.
func rawSegments(r *http.Request) ([]string, error) {
	v := r.PathValue(SlugPathValue)
	if v == "" {
		return []string{}, nil
	}
	segments := strings.Split(v, "/")
	if strings.Contains(strings.ToLower(r.URL.EscapedPath()), "%2f") {
		return segments, errEncodedSeparator
	}
	return segments, nil
}

// HandleRaw serves a document exactly as stored. Malformed slugs are rejected
// with 400 before the provider is consulted.
func (h *ContentHandlers) HandleRaw(w http.ResponseWriter, r *http.Request) {
	segments, err := rawSegments(r)
	if err != nil {
		h.writeInvalidSlug(w, r, strings.Join(segments, "/"), err)
		return
	}
	s, err := slug.FromSegments(segments)
	if err != nil {
		h.writeInvalidSlug(w, r, strings.Join(segments, "/"), err)
		return
	}

	doc, err := h.provider.Resolve(r.Context(), h.opts.BaseDir, s.Segments())
	switch {
	case err == nil && doc != nil:
		writeCacheable(w, r, CacheRaw, "text/plain; charset=utf-8", doc.Raw)
	case err == nil, stderrors.Is(err, derrors.ErrNotFound):
		setCacheControl(w, CacheRaw)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundBody))
	case stderrors.Is(err, derrors.ErrInvalidSlug):
		h.writeInvalidSlug(w, r, s.String(), err)
	default:
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryContent, "failed to resolve document").
			WithContext("slug", s.String()).
			Build())
	}
}

func (h *ContentHandlers) writeInvalidSlug(w http.ResponseWriter, r *http.Request, raw string, cause error) {
	setCacheControl(w, CacheRaw)
	h.errorAdapter.WriteErrorResponse(w, r, errors.ValidationError("invalid document slug").
		WithCause(cause).
		WithContext("slug", raw).
		Build())
}

// HandleManifest resolves every listed document and serves the manifest.
// Documents that fail to resolve are omitted; they never fail the request.
func (h *ContentHandlers) HandleManifest(w http.ResponseWriter, r *http.Request) {
	metas, err := h.provider.ListAllMetadata(r.Context())
	if err != nil {
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryManifest, "failed to enumerate documents").Build())
		return
	}

	part := docs.ResolveAll(r.Context(), h.provider, h.opts.BaseDir, metas, h.opts.Resolve)
	for _, f := range part.Failed {
		h.logger.Debug("Omitting unresolvable document from manifest",
			logfields.Slug(f.Slug.String()),
			logfields.Error(f.Err))
	}
	h.recorder.IncResolveFailures("manifest", len(part.Failed))

	body, err := h.manifest.BuildManifest(part.Resolved)
	if err != nil {
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryManifest, "failed to build manifest").
			WithContext("documents", strconv.Itoa(len(part.Resolved))).
			Build())
		return
	}
	h.recorder.SetDocuments(len(part.Resolved))
	writeCacheable(w, r, CacheManifest, contentTypeJSON, body)
}

// HandleSearchIndex serves the client-side search index.
func (h *ContentHandlers) HandleSearchIndex(w http.ResponseWriter, r *http.Request) {
	documents, err := h.provider.ListSearchable(r.Context())
	if err != nil {
		setCacheControl(w, CacheNoStore)
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategorySearch, "failed to list searchable documents").Build())
		return
	}
	idx, err := h.index.BuildSearchIndex(documents)
	if err == nil {
		var body []byte
		if body, err = encodeJSON(idx); err == nil {
			writeCacheable(w, r, CacheSearchIndex, contentTypeJSON, body)
			return
		}
	}
	setCacheControl(w, CacheNoStore)
	h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategorySearch, "failed to build search index").Build())
}
