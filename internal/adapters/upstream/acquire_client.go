package upstream

import (
	"context"
	"encoding/json"

	"github.com/Sama14b/orchestrator/internal/domain"
)

// AcquireClient talks to the data-acquisition service.
type AcquireClient struct {
	client
}

func NewAcquireClient(baseURL string) *AcquireClient {
	return &AcquireClient{client: newClient(domain.StageAcquire, baseURL)}
}

// Acquire forwards the caller's payload verbatim and returns the raw
// acquisition result. Shape validation belongs to the call chain, not here.
func (c *AcquireClient) Acquire(ctx context.Context, payload json.RawMessage) (*domain.AcquireResult, error) {
	var res domain.AcquireResult
	if err := c.postJSON(ctx, "/data", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *AcquireClient) Name() string { return string(domain.StageAcquire) }
func (c *AcquireClient) URL() string  { return c.baseURL }

func (c *AcquireClient) Probe(ctx context.Context) (string, error) {
	return c.probe(ctx)
}
