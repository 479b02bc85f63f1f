package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineSectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_pipeline_sections_total",
			Help: "Count of pipeline section runs by section and status.",
		},
		[]string{"section", "status"},
	)
)

func init() {
	prometheus.MustRegister(PipelineSectionsTotal)
}
