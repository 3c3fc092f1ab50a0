package ports

import "context"

// HealthProber checks one upstream's health endpoint in isolation.
type HealthProber interface {
	Name() string
	URL() string
	Probe(ctx context.Context) (string, error)
}
