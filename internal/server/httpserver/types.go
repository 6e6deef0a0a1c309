package httpserver

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server/handlers"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	Provider    docs.Provider
	Manifest    docs.ManifestBuilder
	SearchIndex docs.SearchIndexBuilder
	// Searcher enables /api/search when set.
	Searcher handlers.Searcher
	// Recorder receives request metrics. Nil disables them.
	Recorder metrics.Recorder
	// MetricsHandler is mounted at the configured metrics path when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}
