package instance

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the per-instance Prometheus series (SPEC_FULL.md §4.1 NEW
// "Tick metrics"), registered once per process and labeled by map_id,
// following the teacher's registry-plus-MustRegister idiom
// (pkg/server/metrics.go).
type metrics struct {
	ticks       *prometheus.CounterVec
	tickLag     *prometheus.HistogramVec
	entityCount *prometheus.GaugeVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duskward_instance_ticks_total",
				Help: "Total number of ticks calculated by an instance",
			},
			[]string{"map_id"},
		),
		tickLag: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duskward_instance_tick_lag_seconds",
				Help:    "Accumulated lag observed before a tick catch-up pass",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"map_id"},
		),
		entityCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "duskward_instance_entities",
				Help: "Live entity count on an instance",
			},
			[]string{"map_id"},
		),
	}
	if registry != nil {
		registry.MustRegister(m.ticks, m.tickLag, m.entityCount)
	}
	return m
}
