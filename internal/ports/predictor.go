package ports

import (
	"context"

	"github.com/Sama14b/orchestrator/internal/domain"
)

// Predictor runs the prediction stage against a request derived from a
// validated acquisition result.
type Predictor interface {
	Predict(ctx context.Context, req *domain.PredictionRequest) (*domain.PredictResult, error)
}
