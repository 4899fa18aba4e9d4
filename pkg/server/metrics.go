package server

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	generations *prometheus.CounterVec
	duration    prometheus.Histogram
	connections prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "figma_happyx_triggers_total",
				Help: "Triggers handled, by outcome (code, skipped, ignored, error)",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "figma_happyx_generation_duration_seconds",
				Help:    "Duration of frame generations, image retrieval included",
				Buckets: prometheus.DefBuckets,
			},
		),
		connections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "figma_happyx_websocket_connections",
				Help: "Open WebSocket connections",
			},
		),
	}
	reg.MustRegister(m.generations, m.duration, m.connections)
	return m
}
