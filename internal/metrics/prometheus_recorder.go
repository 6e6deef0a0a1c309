package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	requestDuration *prom.HistogramVec
	requests        *prom.CounterVec
	resolveFailures *prom.CounterVec
	documents       prom.Gauge
	searchQueries   prom.Counter
	searchHits      prom.Histogram
	jobDuration     *prom.HistogramVec
	eventPublishes  *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method"}),
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		resolveFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_failures_total",
			Help:      "Documents omitted from aggregate responses because resolution failed",
		}, []string{"endpoint"}),
		documents: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "manifest_documents",
			Help:      "Documents in the most recently served manifest",
		}),
		searchQueries: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Server-side search queries",
		}),
		searchHits: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "search_hits",
			Help:      "Hits returned per search query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50},
		}),
		jobDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of background maintenance jobs",
			Buckets:   prom.DefBuckets,
		}, []string{"job", "result"}),
		eventPublishes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "event_publishes_total",
			Help:      "Content change events published by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.requestDuration, pr.requests, pr.resolveFailures, pr.documents,
		pr.searchQueries, pr.searchHits, pr.jobDuration, pr.eventPublishes)
	return pr
}

var _ Recorder = (*PrometheusRecorder)(nil)

func (p *PrometheusRecorder) ObserveRequest(route, method string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.requestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	p.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) IncResolveFailures(endpoint string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.resolveFailures.WithLabelValues(endpoint).Add(float64(n))
}

func (p *PrometheusRecorder) SetDocuments(n int) {
	if p == nil {
		return
	}
	p.documents.Set(float64(n))
}

func (p *PrometheusRecorder) IncSearchQuery(hits int) {
	if p == nil {
		return
	}
	p.searchQueries.Inc()
	p.searchHits.Observe(float64(hits))
}

func (p *PrometheusRecorder) ObserveJob(job string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.jobDuration.WithLabelValues(job, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncEventPublish(success bool) {
	if p == nil {
		return
	}
	p.eventPublishes.WithLabelValues(resultLabel(success)).Inc()
}
