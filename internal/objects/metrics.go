package objects

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results recorded by Metrics.
const (
	ResultFound    = "found"
	ResultInvalid  = "invalid"
	ResultMissing  = "missing"
	ResultMismatch = "mismatch"
	ResultError    = "error"
)

// Metrics holds Prometheus metrics for object resolution.
//
// Metrics:
//   - inspire_object_lookups_total{kind,result} - resolutions by requested kind and outcome
type Metrics struct {
	LookupsTotal *prometheus.CounterVec
}

// NewMetrics registers resolver metrics with reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspire_object_lookups_total",
				Help: "Total number of object resolutions by requested kind and result",
			},
			[]string{"kind", "result"},
		),
	}
}

func (m *Metrics) observe(kind Kind, result string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(string(kind), result).Inc()
}
