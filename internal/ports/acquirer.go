package ports

import (
	"context"
	"encoding/json"

	"github.com/Sama14b/orchestrator/internal/domain"
)

// Acquirer runs the data-acquisition stage. The payload is the caller's
// opaque JSON body, forwarded verbatim.
type Acquirer interface {
	Acquire(ctx context.Context, payload json.RawMessage) (*domain.AcquireResult, error)
}
