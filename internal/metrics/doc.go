// Package metrics provides the observability hooks of the docs server.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metric calls never need nil checks:
//
//	type Handlers struct {
//	    recorder metrics.Recorder
//	}
//
// When metrics are enabled the server swaps in a PrometheusRecorder and
// exposes its registry through HTTPHandler.
package metrics
