package audit

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"meal-export-backend/internal/model"
	"meal-export-backend/internal/store"
)

// DrainTimeout bounds how long workers keep persisting queued entries after shutdown.
const DrainTimeout = 5 * time.Second

// Recorder accepts fetch audit entries without blocking the request path.
type Recorder interface {
	Dispatch(entry model.FetchLog)
}

// WorkerPool manages a pool of workers that persist fetch audit entries.
type WorkerPool struct {
	size  int
	jobs  chan model.FetchLog
	store store.Store
	wg    sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:  size,
		jobs:  make(chan model.FetchLog, size*16),
		store: s,
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.WithField("worker", id).Debug("audit worker started")
	for {
		// shutdown wins over queued work; drain handles the rest
		if ctx.Err() != nil {
			wp.shutdown(ctx, id)
			return
		}
		select {
		case entry := <-wp.jobs:
			wp.persist(ctx, entry)
		case <-ctx.Done():
			wp.shutdown(ctx, id)
			return
		}
	}
}

func (wp *WorkerPool) shutdown(ctx context.Context, id int) {
	log.WithField("worker", id).Debug("audit worker shutting down")
	wp.drain(ctx)
}

// drain persists whatever is still queued. The store calls get their own
// deadline since ctx is already cancelled.
func (wp *WorkerPool) drain(ctx context.Context) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DrainTimeout)
	defer cancel()
	for {
		select {
		case entry := <-wp.jobs:
			wp.persist(drainCtx, entry)
		default:
			return
		}
	}
}

// Dispatch queues an entry. When the queue is full the entry is dropped.
func (wp *WorkerPool) Dispatch(entry model.FetchLog) {
	select {
	case wp.jobs <- entry:
	default:
		log.WithFields(log.Fields{
			"year":  entry.Year,
			"month": entry.Month,
		}).Warn("audit queue full, dropping fetch log entry")
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.FetchLog {
	return wp.jobs
}

func (wp *WorkerPool) persist(ctx context.Context, entry model.FetchLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := wp.store.RecordFetch(ctx, &entry); err != nil {
		log.WithError(err).Error("failed to persist fetch log entry")
	}
}

// Discard is a Recorder that ignores every entry.
type Discard struct{}

func (Discard) Dispatch(model.FetchLog) {}
