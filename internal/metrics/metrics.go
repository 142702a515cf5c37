package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_upstream_requests_total",
			Help: "Total number of third-party API attempts",
		},
		[]string{"service", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outreach_upstream_duration_seconds",
			Help:    "Duration of third-party API attempts in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"service"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_cache_lookups_total",
			Help: "Total number of key-value cache lookups by namespace",
		},
		[]string{"namespace", "result"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outreach_emails_sent_total",
			Help: "Total number of transactional e-mails attempted",
		},
		[]string{"kind", "outcome"},
	)
)

// ObserveUpstream records one attempt against a third-party service.
func ObserveUpstream(service string, err error, elapsed time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(service, outcome(err)).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// RecordCacheLookup counts a hit or miss for a cache namespace.
func RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(namespace, result).Inc()
}

// RecordEmail counts a send attempt of the given kind.
func RecordEmail(kind string, err error) {
	EmailsSentTotal.WithLabelValues(kind, outcome(err)).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
