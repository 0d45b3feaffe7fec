package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ContractProcessor is the slice of the pipeline the queue drives.
type ContractProcessor interface {
	ProcessContract(ctx context.Context, contractID uuid.UUID) (uuid.UUID, error)
}

// CheckQueue runs compliance checks on a fixed worker pool. Enqueue blocks
// when the buffer fills, which is the backpressure signal for uploads.
type CheckQueue struct {
	proc    ContractProcessor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*CheckQueue)

func WithWorkers(n int) Option {
	return func(q *CheckQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *CheckQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *CheckQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewCheckQueue(proc ContractProcessor, logger *slog.Logger, opts ...Option) *CheckQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &CheckQueue{
		proc:    proc,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *CheckQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("queue.worker.started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					jobID, err := q.proc.ProcessContract(ctx, job.ContractID)
					cancel()

					if err != nil {
						q.logger.Error("queue.check.failed",
							"worker_id", workerID, "contract_id", job.ContractID, "job_id", jobID, "error", err)
					} else {
						q.logger.Info("queue.check.ok",
							"worker_id", workerID, "contract_id", job.ContractID, "job_id", jobID,
							"waited_ms", time.Since(job.SubmittedAt).Milliseconds())
					}
				}

				q.logger.Info("queue.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *CheckQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("queue.enqueue.rejected", "contract_id", job.ContractID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queue.enqueued", "contract_id", job.ContractID, "force", job.Force)
	default:
		q.logger.Warn("queue.full", "contract_id", job.ContractID)
		q.ch <- job
	}
	return nil
}

func (q *CheckQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("queue.shutdown.interrupted")
	case <-done:
		q.logger.Info("queue.shutdown.complete")
	}
}
