package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sama14b/orchestrator/internal/adapters/observability"
	"github.com/Sama14b/orchestrator/internal/adapters/upstream"
	"github.com/Sama14b/orchestrator/internal/app/chain"
	"github.com/Sama14b/orchestrator/internal/app/config"
	"github.com/Sama14b/orchestrator/internal/app/status"
	"github.com/Sama14b/orchestrator/internal/ports"
	"github.com/Sama14b/orchestrator/internal/server"
)

// Version is reported by the root service descriptor.
const Version = "1.0.0"

// Option customizes the dependencies used by Runtime.
type Option func(*overrides)

type overrides struct {
	acquirer      ports.Acquirer
	predictor     ports.Predictor
	observability ports.Observability
	probers       []ports.HealthProber
}

// WithAcquirer injects a custom acquisition-stage implementation.
func WithAcquirer(a ports.Acquirer) Option {
	return func(o *overrides) {
		o.acquirer = a
	}
}

// WithPredictor injects a custom prediction-stage implementation.
func WithPredictor(p ports.Predictor) Option {
	return func(o *overrides) {
		o.predictor = p
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs ports.Observability) Option {
	return func(o *overrides) {
		o.observability = obs
	}
}

// WithProbers replaces the default upstream health probes.
func WithProbers(probers ...ports.HealthProber) Option {
	return func(o *overrides) {
		o.probers = probers
	}
}

// Runtime wires the call chain, status aggregator, and HTTP surface together
// and exposes lifecycle hooks for embedding the orchestrator in any process.
type Runtime struct {
	cfg     *config.Config
	obs     ports.Observability
	handler http.Handler
	srv     *http.Server

	started     time.Time
	gaugeStopCh chan struct{}
}

// New bootstraps the default adapters (HTTP upstream clients, Prometheus
// observability). Options override any dependency, which is how tests swap in
// mock endpoints without touching process environment.
func New(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var ov overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	obs := ov.observability
	if obs == nil {
		obs = observability.NewPromObs()
	}

	acquireClient := upstream.NewAcquireClient(cfg.AcquireURL)
	predictClient := upstream.NewPredictClient(cfg.PredictURL)

	acq := ov.acquirer
	if acq == nil {
		acq = acquireClient
	}
	pred := ov.predictor
	if pred == nil {
		pred = predictClient
	}

	probers := ov.probers
	if probers == nil {
		probers = []ports.HealthProber{acquireClient, predictClient}
	}

	coordinator := chain.New(acq, pred, obs, cfg.AcquireTimeout, cfg.PredictTimeout)
	aggregator := status.New(cfg.ProbeTimeout, probers...)
	srv := server.New(cfg, coordinator, aggregator, obs, Version)

	return &Runtime{
		cfg:     cfg,
		obs:     obs,
		handler: srv.Handler(),
	}, nil
}

// Handler exposes the HTTP surface without starting a listener.
func (r *Runtime) Handler() http.Handler {
	return r.handler
}

// Start launches the HTTP server and the uptime gauge loop. It returns
// immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}
	r.started = time.Now()

	r.srv = &http.Server{
		Addr:    r.cfg.ListenAddr,
		Handler: r.handler,
	}

	go func() {
		if err := r.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("http_server_exited", err)
		}
	}()

	r.gaugeStopCh = make(chan struct{})
	go r.recordUptime(r.gaugeStopCh, time.Second)

	r.obs.LogInfo("orchestrator_started",
		ports.Field{Key: "addr", Value: r.cfg.ListenAddr},
		ports.Field{Key: "acquire_url", Value: r.cfg.AcquireURL},
		ports.Field{Key: "predict_url", Value: r.cfg.PredictURL})
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled,
// then attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the HTTP server and the gauge loop.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.gaugeStopCh != nil {
		close(r.gaugeStopCh)
		r.gaugeStopCh = nil
	}
	if r.srv != nil {
		if err := r.srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}
	return nil
}

func (r *Runtime) recordUptime(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.obs.SetGauge("orch_uptime_seconds", time.Since(r.started).Seconds())
		}
	}
}
