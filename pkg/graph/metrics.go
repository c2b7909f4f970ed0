package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors a Graph reports into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transactions *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec
	QueueDepth   prometheus.Gauge
	Entities     *prometheus.GaugeVec
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "texgraph_transactions_total",
			Help: "Transactions processed, by kind and result.",
		}, []string{"kind", "result"}),
		TickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "texgraph_tick_duration_seconds",
			Help:    "Wall time of one download, mutate, commit, upload cycle.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 10),
		}, []string{"kind"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "texgraph_queue_depth",
			Help: "Transactions waiting for a tick.",
		}),
		Entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "texgraph_entities",
			Help: "Live vertices and edges after the last commit.",
		}, []string{"kind"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Transactions, m.TickDuration, m.QueueDepth, m.Entities} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observeTick(kind Kind, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Transactions.WithLabelValues(kind.String(), result).Inc()
	m.TickDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}

func (m *Metrics) setQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

func (m *Metrics) setEntities(vertices, edges int) {
	if m == nil {
		return
	}
	m.Entities.WithLabelValues("vertex").Set(float64(vertices))
	m.Entities.WithLabelValues("edge").Set(float64(edges))
}
