package upstream

import (
	"context"

	"github.com/Sama14b/orchestrator/internal/domain"
)

// PredictClient talks to the prediction service.
type PredictClient struct {
	client
}

func NewPredictClient(baseURL string) *PredictClient {
	return &PredictClient{client: newClient(domain.StagePredict, baseURL)}
}

func (c *PredictClient) Predict(ctx context.Context, req *domain.PredictionRequest) (*domain.PredictResult, error) {
	var res domain.PredictResult
	if err := c.postJSON(ctx, "/predict", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *PredictClient) Name() string { return string(domain.StagePredict) }
func (c *PredictClient) URL() string  { return c.baseURL }

func (c *PredictClient) Probe(ctx context.Context) (string, error) {
	return c.probe(ctx)
}
