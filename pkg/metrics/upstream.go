package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by UpstreamMetrics.IncRefresh.
const (
	RefreshSucceeded = "success"
	RefreshFailed    = "failure"
	RefreshShared    = "shared"
)

// UpstreamMetrics records calls the console makes against its backends.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of calls to the commerce and identity APIs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Calls to the commerce and identity APIs by response status.",
	}, []string{"backend", "method", "status"})
	refresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_token_refresh_total",
		Help: "Access token refresh attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, requests, refresh)
	return &UpstreamMetrics{
		duration: duration,
		requests: requests,
		refresh:  refresh,
	}
}

// ObserveRequest records one upstream round trip. status 0 means the request never
// produced a response.
func (u *UpstreamMetrics) ObserveRequest(backend, method string, status int, duration time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	backend = normalizeLabel(backend)
	method = normalizeLabel(method)
	u.duration.WithLabelValues(backend, method).Observe(duration.Seconds())
	statusLabel := "error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	u.requests.WithLabelValues(backend, method, statusLabel).Inc()
}

// IncRefresh counts a refresh attempt outcome.
func (u *UpstreamMetrics) IncRefresh(outcome string) {
	if u == nil || u.refresh == nil {
		return
	}
	u.refresh.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
