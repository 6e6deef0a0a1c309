// Package responses defines API response types used by the docs server handlers.
package responses

import "git.home.luguber.info/inful/docsite/internal/search"

// HealthStatusOK is the only status the health endpoint reports.
const HealthStatusOK = "ok"

// HealthResponse is the body of /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// SearchResponse is the body of /api/search.
type SearchResponse struct {
	Query string       `json:"query"`
	Count int          `json:"count"`
	Hits  []search.Hit `json:"hits"`
}

// VersionResponse is the body of /api/version.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}
