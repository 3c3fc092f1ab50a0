package status

import (
	"context"
	"sync"
	"time"

	"github.com/Sama14b/orchestrator/internal/domain"
	"github.com/Sama14b/orchestrator/internal/ports"
)

// Aggregator probes every upstream health endpoint independently and folds
// the outcomes into one report. A dead upstream never blocks or skips the
// probe of another.
type Aggregator struct {
	probers []ports.HealthProber
	timeout time.Duration
	started time.Time
}

func New(timeout time.Duration, probers ...ports.HealthProber) *Aggregator {
	return &Aggregator{
		probers: probers,
		timeout: timeout,
		started: time.Now(),
	}
}

// Report runs all probes concurrently, waits for every one to finish or time
// out, and aggregates. Overall is healthy only when every service is ok.
func (a *Aggregator) Report(ctx context.Context) *domain.StatusReport {
	services := make([]domain.ServiceStatus, len(a.probers))

	var wg sync.WaitGroup
	for i, p := range a.probers {
		wg.Add(1)
		go func(i int, p ports.HealthProber) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			st := domain.ServiceStatus{URL: p.URL()}
			body, err := p.Probe(probeCtx)
			if err != nil {
				st.Status = domain.ProbeError
				st.Error = err.Error()
			} else {
				st.Status = domain.ProbeOK
				st.Response = body
			}
			services[i] = st
		}(i, p)
	}
	wg.Wait()

	overall := domain.StatusHealthy
	byName := make(map[string]domain.ServiceStatus, len(a.probers))
	for i, p := range a.probers {
		if services[i].Status != domain.ProbeOK {
			overall = domain.StatusDegraded
		}
		byName[p.Name()] = services[i]
	}

	return &domain.StatusReport{
		Overall:       overall,
		Services:      byName,
		UptimeSeconds: time.Since(a.started).Seconds(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	}
}
