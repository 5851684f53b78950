package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/suar-net/suar-relay/internal/model"
	"github.com/suar-net/suar-relay/internal/repository"
)

// HistoryRecorder persists relay history in the background. A failed write
// is logged and dropped; it never changes the outcome already returned to
// the caller, and it is never retried.
type HistoryRecorder struct {
	repo    repository.IHistoryRepository
	timeout time.Duration
	logger  *log.Logger
	wg      sync.WaitGroup
}

func NewHistoryRecorder(repo repository.IHistoryRepository, timeout time.Duration, l *log.Logger) *HistoryRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HistoryRecorder{
		repo:    repo,
		timeout: timeout,
		logger:  l,
	}
}

// Record starts the write and returns immediately. The write outlives ctx's
// cancellation but keeps its values.
func (r *HistoryRecorder) Record(ctx context.Context, record *model.HistoryRecord) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.repo.Create(writeCtx, record); err != nil {
			r.logger.Printf("Failed to record history for user %s: %v", record.UserID, err)
		}
	}()
}

// Wait blocks until every pending write has finished or ctx is done.
func (r *HistoryRecorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
