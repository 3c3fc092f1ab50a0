package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromObsMetrics(t *testing.T) {
	origReg := prometheus.DefaultRegisterer
	origGatherer := prometheus.DefaultGatherer
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = origReg
		prometheus.DefaultGatherer = origGatherer
	})

	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg

	obs := NewPromObs()

	obs.IncCounter("orch_runs_total", 3)
	if got := testutil.ToFloat64(obs.counters["orch_runs_total"]); got != 3 {
		t.Fatalf("expected runs counter 3, got %f", got)
	}

	obs.IncCounter("orch_run_failures_total", 1)
	if got := testutil.ToFloat64(obs.counters["orch_run_failures_total"]); got != 1 {
		t.Fatalf("expected failure counter 1, got %f", got)
	}

	obs.SetGauge("orch_uptime_seconds", 42)
	if got := testutil.ToFloat64(obs.gauges["orch_uptime_seconds"]); got != 42 {
		t.Fatalf("expected uptime gauge 42, got %f", got)
	}

	obs.ObserveLatency("orch_run_duration_seconds", 0.25)
	hCollector := obs.histos["orch_run_duration_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected run duration histogram to record 1 sample, got %d", samples)
	}

	// unknown names are ignored, not registered lazily
	obs.IncCounter("orch_unknown_total", 1)
	obs.SetGauge("orch_unknown", 1)
	obs.ObserveLatency("orch_unknown_seconds", 1)
}
