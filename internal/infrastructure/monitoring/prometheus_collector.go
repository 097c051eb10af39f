// Package monitoring exposes Prometheus metrics for the ingestion
// pipeline.
package monitoring

import (
	"time"

	"clipgate/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements both the service-level MetricsRecorder and the
// platform-client Metrics interfaces.
type Collector struct {
	ingestRequests   *prometheus.CounterVec
	quotaRejections  *prometheus.CounterVec
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	tokenRefreshes   *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

func NewCollector() *Collector {
	return &Collector{
		ingestRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clipgate_ingest_requests_total",
			Help: "Ingestion requests by source and outcome.",
		}, []string{"source", "outcome"}),
		quotaRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clipgate_quota_rejections_total",
			Help: "Requests rejected by the usage quota gate, by reason.",
		}, []string{"reason"}),
		upstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clipgate_upstream_requests_total",
			Help: "Requests sent to platform APIs, by platform and outcome.",
		}, []string{"platform", "outcome"}),
		upstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clipgate_upstream_request_duration_seconds",
			Help:    "Latency of platform API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform"}),
		tokenRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clipgate_token_refreshes_total",
			Help: "App access token grants, by platform.",
		}, []string{"platform"}),
		activeSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clipgate_active_sessions",
			Help: "Currently active stream sessions.",
		}),
	}
}

func (c *Collector) RecordIngest(source domain.SourceType, outcome string) {
	c.ingestRequests.WithLabelValues(string(source), outcome).Inc()
}

func (c *Collector) RecordQuotaRejection(reason string) {
	c.quotaRejections.WithLabelValues(reason).Inc()
}

func (c *Collector) SessionStarted() {
	c.activeSessions.Inc()
}

func (c *Collector) SessionEnded() {
	c.activeSessions.Dec()
}

func (c *Collector) ObserveUpstream(platform, outcome string, duration time.Duration) {
	c.upstreamRequests.WithLabelValues(platform, outcome).Inc()
	c.upstreamLatency.WithLabelValues(platform).Observe(duration.Seconds())
}

func (c *Collector) RecordTokenRefresh(platform string) {
	c.tokenRefreshes.WithLabelValues(platform).Inc()
}
