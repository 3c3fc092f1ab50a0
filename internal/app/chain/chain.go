package chain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Sama14b/orchestrator/internal/domain"
	"github.com/Sama14b/orchestrator/internal/ports"
)

// Coordinator executes the acquisition → validation → prediction sequence for
// one inbound request and produces exactly one outcome. Stage two never
// starts unless stage one returned a structurally valid result.
type Coordinator struct {
	acquirer  ports.Acquirer
	predictor ports.Predictor
	obs       ports.Observability

	acquireTimeout time.Duration
	predictTimeout time.Duration
}

func New(acq ports.Acquirer, pred ports.Predictor, obs ports.Observability, acquireTimeout, predictTimeout time.Duration) *Coordinator {
	return &Coordinator{
		acquirer:       acq,
		predictor:      pred,
		obs:            obs,
		acquireTimeout: acquireTimeout,
		predictTimeout: predictTimeout,
	}
}

// Run drives one orchestration. runID is a caller-supplied correlation id;
// it only feeds logging, never control flow. On failure the returned error is
// always a *domain.StageError.
func (c *Coordinator) Run(ctx context.Context, runID string, payload json.RawMessage) (*domain.OrchestrationResult, error) {
	runStart := time.Now()

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, c.acquireTimeout)
	acquired, err := c.acquirer.Acquire(acquireCtx, payload)
	cancelAcquire()
	c.obs.ObserveLatency("orch_acquire_duration_seconds", time.Since(runStart).Seconds())
	if err != nil {
		return nil, c.fail(runID, domain.Classify(domain.StageAcquire, err))
	}

	features, reason := ValidateAcquire(acquired)
	if reason != ReasonOK {
		c.obs.IncCounter("orch_validation_failures_total", 1)
		return nil, c.fail(runID, validationError(acquired, reason))
	}

	predictStart := time.Now()
	predictCtx, cancelPredict := context.WithTimeout(ctx, c.predictTimeout)
	predicted, err := c.predictor.Predict(predictCtx, buildPredictionRequest(acquired, features))
	cancelPredict()
	c.obs.ObserveLatency("orch_predict_duration_seconds", time.Since(predictStart).Seconds())
	if err != nil {
		return nil, c.fail(runID, domain.Classify(domain.StagePredict, err))
	}

	result := assemble(acquired, predicted)

	total := time.Since(runStart)
	c.obs.ObserveLatency("orch_run_duration_seconds", total.Seconds())
	c.obs.IncCounter("orch_runs_total", 1)
	c.obs.LogInfo("run_complete",
		ports.Field{Key: "run_id", Value: runID},
		ports.Field{Key: "data_id", Value: result.DataID},
		ports.Field{Key: "prediction_id", Value: result.PredictionID},
		ports.Field{Key: "duration", Value: total})

	return result, nil
}

func (c *Coordinator) fail(runID string, se *domain.StageError) *domain.StageError {
	c.obs.IncCounter("orch_run_failures_total", 1)
	c.obs.LogError("run_failed", se,
		ports.Field{Key: "run_id", Value: runID},
		ports.Field{Key: "kind", Value: se.Kind.String()},
		ports.Field{Key: "service", Value: string(se.Stage)})
	return se
}

func buildPredictionRequest(acquired *domain.AcquireResult, features []float64) *domain.PredictionRequest {
	return &domain.PredictionRequest{
		Features: features,
		Meta: domain.PredictionMeta{
			DataID:           acquired.DataID,
			Source:           "orchestrator",
			FeatureCount:     acquired.FeatureCount,
			ScalerVersion:    acquired.ScalerVersion,
			AcquireTimestamp: acquired.CreatedAt,
		},
	}
}

// assemble builds the success contract. A missing upstream timestamp is
// replaced at assembly time so the emitted value reflects completion, not
// request start.
func assemble(acquired *domain.AcquireResult, predicted *domain.PredictResult) *domain.OrchestrationResult {
	ts := predicted.Timestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339Nano)
	}
	return &domain.OrchestrationResult{
		DataID:       acquired.DataID,
		PredictionID: predicted.PredictionID,
		Prediction:   predicted.Prediction,
		Timestamp:    ts,
	}
}
