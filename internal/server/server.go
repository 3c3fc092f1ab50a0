package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sama14b/orchestrator/internal/app/chain"
	"github.com/Sama14b/orchestrator/internal/app/config"
	"github.com/Sama14b/orchestrator/internal/app/status"
	"github.com/Sama14b/orchestrator/internal/domain"
	"github.com/Sama14b/orchestrator/internal/ports"
)

const ServiceName = "orchestrator"

// maxRunBody bounds the opaque pass-through payload accepted on /run.
const maxRunBody = 1 << 20

// Server owns the HTTP surface and the taxonomy → status-code mapping.
// Everything behind it is request-scoped; handlers share no mutable state.
type Server struct {
	cfg     *config.Config
	chain   *chain.Coordinator
	status  *status.Aggregator
	obs     ports.Observability
	version string
}

func New(cfg *config.Config, c *chain.Coordinator, st *status.Aggregator, obs ports.Observability, version string) *Server {
	return &Server{
		cfg:     cfg,
		chain:   c,
		status:  st,
		obs:     obs,
		version: version,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/run", s.handleRun)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   ServiceName,
		"version":   s.version,
		"endpoints": []string{"GET /", "GET /health", "GET /status", "POST /run", "GET /metrics"},
		"config": map[string]any{
			"acquireUrl":       s.cfg.AcquireURL,
			"predictUrl":       s.cfg.PredictURL,
			"acquireTimeoutMs": s.cfg.AcquireTimeout.Milliseconds(),
			"predictTimeoutMs": s.cfg.PredictTimeout.Milliseconds(),
			"probeTimeoutMs":   s.cfg.ProbeTimeout.Milliseconds(),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := s.status.Report(r.Context())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRunBody))
	if err != nil {
		writeError(w, domain.NewValidation("could not read request body"))
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		writeError(w, domain.NewValidation("request body is not valid JSON"))
		return
	}

	runID := uuid.NewString()
	w.Header().Set("X-Run-Id", runID)
	s.obs.LogInfo("run_received",
		ports.Field{Key: "run_id", Value: runID},
		ports.Field{Key: "bytes", Value: len(body)})

	result, err := s.chain.Run(r.Context(), runID, body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeError maps a classified failure onto the uniform error contract.
func writeError(w http.ResponseWriter, err error) {
	se := domain.Classify("", err)

	body := map[string]any{
		"success": false,
		"error":   se.Kind.String(),
		"detail":  se.Detail,
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	}

	var code int
	switch se.Kind {
	case domain.KindUnavailable:
		code = http.StatusServiceUnavailable
		body["service"] = string(se.Stage)
		body["endpoint"] = se.Endpoint
	case domain.KindTimeout:
		code = http.StatusGatewayTimeout
		body["service"] = string(se.Stage)
	case domain.KindUpstream:
		code = se.StatusCode
		body["service"] = string(se.Stage)
		body["statusCode"] = se.StatusCode
	case domain.KindValidation:
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
	}

	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// status already committed; an encode failure here has no recovery
	_ = json.NewEncoder(w).Encode(v)
}
