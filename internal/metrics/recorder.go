package metrics

import "time"

// Recorder defines observability hooks for request serving and content
// maintenance. Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveRequest(route, method string, status int, d time.Duration)
	// IncResolveFailures counts documents dropped from an aggregate response
	// because they could not be resolved.
	IncResolveFailures(endpoint string, n int)
	SetDocuments(n int)
	IncSearchQuery(hits int)
	ObserveJob(job string, d time.Duration, success bool)
	IncEventPublish(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are disabled).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRequest(string, string, int, time.Duration) {}
func (NoopRecorder) IncResolveFailures(string, int)                    {}
func (NoopRecorder) SetDocuments(int)                                  {}
func (NoopRecorder) IncSearchQuery(int)                                {}
func (NoopRecorder) ObserveJob(string, time.Duration, bool)            {}
func (NoopRecorder) IncEventPublish(bool)                              {}

var _ Recorder = NoopRecorder{}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
