package mods

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds business counters for the mod catalog.
type Metrics struct {
	Mods        prometheus.Gauge
	Downloads   prometheus.Counter
	UploadBytes prometheus.Counter
}

// NewMetrics registers the catalog metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Mods: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "moddepot",
			Name:      "mods",
			Help:      "Number of mod records in the catalog.",
		}),
		Downloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "moddepot",
			Name:      "downloads_total",
			Help:      "Recorded mod downloads.",
		}),
		UploadBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "moddepot",
			Name:      "upload_bytes_total",
			Help:      "Bytes of mod archives accepted.",
		}),
	}
}
