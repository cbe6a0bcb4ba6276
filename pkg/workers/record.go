package workers

import (
	"context"
	"time"

	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/queue"
	"github.com/rmarques/pointblank/pkg/repositories"
	"github.com/rmarques/pointblank/pkg/repositories/models"
)

type RecordMatchWorker struct {
	repository  repositories.Repository
	resultQueue queue.Queue
	interval    time.Duration
}

type NewRecordMatchWorkerOptions struct {
	Repository  repositories.Repository
	ResultQueue queue.Queue
	Interval    time.Duration
}

// NewRecordMatchWorker creates a new RecordMatchWorker.
// The worker drains finished-match records from the queue and persists them
// through the repository.
func NewRecordMatchWorker(opts NewRecordMatchWorkerOptions) *RecordMatchWorker {
	return &RecordMatchWorker{
		repository:  opts.Repository,
		resultQueue: opts.ResultQueue,
		interval:    opts.Interval,
	}
}

func (w *RecordMatchWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.recordPendingResults(ctx)
		}
	}
}

func (w *RecordMatchWorker) recordPendingResults(ctx context.Context) {
	pending, err := w.resultQueue.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read match results: %v", err)
		return
	}

	for _, item := range pending {
		result, ok := item.(*models.MatchResult)
		if !ok {
			log.Error("Failed to cast match result of type %T", item)
			continue
		}
		if err := w.repository.SaveMatchResult(ctx, result); err != nil {
			log.Error("Failed to save match result for session %s: %v", result.SessionID, err)
			continue
		}
		log.Debug("Recorded match result for session %s", result.SessionID)
	}
}
