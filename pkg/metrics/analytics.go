package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the full report handler
	ReportLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "analytics_report_latency_seconds",
		Help:    "Latency of the analytics report handler",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of reports served
	ReportRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analytics_report_requests_total",
		Help: "Total number of analytics report requests",
	})

	// Report cache hits vs misses
	ReportCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_report_cache_lookups_total",
		Help: "Report cache lookups by outcome",
	}, []string{"outcome"})
)

func Init() {
	prometheus.MustRegister(
		ReportLatency,
		ReportRequests,
		ReportCacheLookups,
	)
}
