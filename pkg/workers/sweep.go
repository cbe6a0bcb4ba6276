package workers

import (
	"context"
	"time"

	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/registry"
)

type SweepSessionsWorker struct {
	registry *registry.Registry
	interval time.Duration
	minAge   time.Duration
}

type NewSweepSessionsWorkerOptions struct {
	Registry *registry.Registry
	Interval time.Duration
	// MinAge is how long a finished session lingers before it is eligible
	// for removal
	MinAge time.Duration
}

// NewSweepSessionsWorker creates a new SweepSessionsWorker.
// The worker periodically removes sessions that ended and have no observers
// left attached.
func NewSweepSessionsWorker(opts NewSweepSessionsWorkerOptions) *SweepSessionsWorker {
	return &SweepSessionsWorker{
		registry: opts.Registry,
		interval: opts.Interval,
		minAge:   opts.MinAge,
	}
}

func (w *SweepSessionsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := w.registry.RemoveFinished(w.minAge); removed > 0 {
				log.Info("Swept %d finished sessions", removed)
			}
		}
	}
}
