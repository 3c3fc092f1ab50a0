package domain

import "encoding/json"

// FeatureVectorLen is the arity the acquisition service must produce.
const FeatureVectorLen = 7

// AcquireResult is the payload returned by the acquisition service for one run.
// Features stays raw until validation so a malformed shape is reported as a
// validation failure rather than a decode error.
type AcquireResult struct {
	DataID        string          `json:"dataId"`
	Features      json.RawMessage `json:"features"`
	FeatureCount  int             `json:"featureCount"`
	ScalerVersion string          `json:"scalerVersion"`
	CreatedAt     string          `json:"createdAt"`
}

// PredictionMeta carries acquisition provenance alongside the feature vector.
type PredictionMeta struct {
	DataID           string `json:"dataId"`
	Source           string `json:"source"`
	FeatureCount     int    `json:"featureCount"`
	ScalerVersion    string `json:"scalerVersion"`
	AcquireTimestamp string `json:"acquireTimestamp"`
}

// PredictionRequest is the body sent to the prediction service. It is only
// ever derived from a validated AcquireResult, never from caller input.
type PredictionRequest struct {
	Features []float64      `json:"features"`
	Meta     PredictionMeta `json:"meta"`
}

// PredictResult is the payload returned by the prediction service. Prediction
// is opaque at this layer: scalar or structured, it passes through untouched.
type PredictResult struct {
	PredictionID string          `json:"predictionId"`
	Prediction   json.RawMessage `json:"prediction"`
	Timestamp    string          `json:"timestamp,omitempty"`
}

// OrchestrationResult is the success contract of a run. These four fields are
// the only ones guaranteed to downstream consumers.
type OrchestrationResult struct {
	DataID       string          `json:"dataId"`
	PredictionID string          `json:"predictionId"`
	Prediction   json.RawMessage `json:"prediction"`
	Timestamp    string          `json:"timestamp"`
}

// ServiceStatus is the probe outcome for a single upstream service.
type ServiceStatus struct {
	Status   string `json:"status"`
	URL      string `json:"url"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// StatusReport aggregates both upstream probes with orchestrator liveness.
type StatusReport struct {
	Overall       string                   `json:"overall"`
	Services      map[string]ServiceStatus `json:"services"`
	UptimeSeconds float64                  `json:"uptimeSeconds"`
	Timestamp     string                   `json:"timestamp"`
}

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	ProbeOK    = "ok"
	ProbeError = "error"
)
