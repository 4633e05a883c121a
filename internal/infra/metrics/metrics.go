package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ledger exposes ledger activity to Prometheus. It satisfies ledger.Recorder.
type Ledger struct {
	registry *prometheus.Registry
	ops      *prometheus.CounterVec
	lots     *prometheus.GaugeVec
}

func NewLedger() *Ledger {
	reg := prometheus.NewRegistry()
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "metalcut_ledger_operations_total",
		Help: "Ledger operations by kind and outcome.",
	}, []string{"op", "outcome"})
	lots := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "metalcut_ledger_lots",
		Help: "Material lots currently held, by status.",
	}, []string{"status"})
	reg.MustRegister(ops, lots, collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &Ledger{registry: reg, ops: ops, lots: lots}
}

func (m *Ledger) ObserveOp(op, outcome string) {
	m.ops.WithLabelValues(op, outcome).Inc()
}

func (m *Ledger) SetLots(received, depleted int) {
	m.lots.WithLabelValues("received").Set(float64(received))
	m.lots.WithLabelValues("depleted").Set(float64(depleted))
}

// Handler serves the registry in the Prometheus text format.
func (m *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
