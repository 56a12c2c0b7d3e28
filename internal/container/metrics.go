package container

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	buildTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quire_container_build_total",
			Help: "Number of container builds by result.",
		},
		[]string{"result"},
	)

	buildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quire_container_build_duration_seconds",
			Help:    "Time taken to validate the provisioning graph.",
			Buckets: prometheus.DefBuckets,
		},
	)

	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quire_container_resolutions_total",
			Help: "Number of capability resolutions by capability and scope.",
		},
		[]string{"capability", "scope"},
	)

	constructionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quire_container_construction_errors_total",
			Help: "Number of failed provider constructions by capability.",
		},
		[]string{"capability"},
	)

	singletonsConstructed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quire_container_singletons_constructed",
			Help: "Number of singleton providers currently constructed and not closed.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(
		buildTotal,
		buildDuration,
		resolutionsTotal,
		constructionErrorsTotal,
		singletonsConstructed,
	)
}
