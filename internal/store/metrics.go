package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors a Store updates
type Metrics struct {
	Mutations           *prometheus.CounterVec
	ActiveSubscriptions prometheus.Gauge
	Emissions           prometheus.Counter
	QueryErrors         prometheus.Counter
}

// NewMetrics creates the store collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "task_store_mutations_total",
				Help: "Total committed task mutations",
			},
			[]string{"op"},
		),
		ActiveSubscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "task_store_active_subscriptions",
				Help: "Live queries currently registered with the task store",
			},
		),
		Emissions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "task_store_emissions_total",
				Help: "Total results delivered to live queries",
			},
		),
		QueryErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "task_store_query_errors_total",
				Help: "Total live query evaluations that failed",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Mutations, m.ActiveSubscriptions, m.Emissions, m.QueryErrors)
	}
	return m
}
