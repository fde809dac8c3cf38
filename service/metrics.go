package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors updated by StoreService.
type Metrics struct {
	Ops         *prometheus.CounterVec
	Keys        prometheus.Gauge
	BlackHeight prometheus.Gauge
	LastSeq     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordmap",
			Name:      "operations_total",
			Help:      "Store operations by kind and outcome.",
		}, []string{"op", "result"}),
		Keys: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ordmap",
			Name:      "keys",
			Help:      "Number of keys in the store.",
		}),
		BlackHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ordmap",
			Name:      "tree_black_height",
			Help:      "Black-height of the red-black tree after the last write.",
		}),
		LastSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ordmap",
			Name:      "last_sequence",
			Help:      "Sequence number of the last applied change.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Ops, m.Keys, m.BlackHeight, m.LastSeq)
	}
	return m
}
