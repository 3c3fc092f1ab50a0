package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sama14b/orchestrator/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orch_runs_total",
		Help: "Orchestration runs that completed successfully.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orch_run_failures_total",
		Help: "Orchestration runs that ended in a classified failure.",
	})
	validations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orch_validation_failures_total",
		Help: "Acquisition results rejected by shape/arity validation.",
	})
	uptime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orch_uptime_seconds",
		Help: "Seconds since the orchestrator started.",
	})
	acquireLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orch_acquire_duration_seconds",
		Help:    "Duration of the acquisition stage.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 13),
	})
	predictLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orch_predict_duration_seconds",
		Help:    "Duration of the prediction stage.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 13),
	})
	runLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orch_run_duration_seconds",
		Help:    "End-to-end duration of an orchestration run.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 13),
	})

	prometheus.MustRegister(runs, failures, validations, uptime,
		acquireLatency, predictLatency, runLatency)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"orch_runs_total":                runs,
			"orch_run_failures_total":        failures,
			"orch_validation_failures_total": validations,
		},
		gauges: map[string]prometheus.Gauge{
			"orch_uptime_seconds": uptime,
		},
		histos: map[string]prometheus.Observer{
			"orch_acquire_duration_seconds": acquireLatency,
			"orch_predict_duration_seconds": predictLatency,
			"orch_run_duration_seconds":     runLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("INFO: %s%s", msg, formatFields(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v%s", msg, err, formatFields(fields))
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func formatFields(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
