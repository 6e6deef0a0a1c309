// Package handlers contains the HTTP handlers of the docs server API.
//
// This package provides handlers for:
//   - raw document content, resolved from a slug in the request path
//   - the navigation manifest and the client-side search index
//   - server-side search over the sqlite store
//   - health and version endpoints
//
// Every response carries an explicit Cache-Control policy. Errors are
// written through the foundation/errors HTTP adapter.
package handlers
