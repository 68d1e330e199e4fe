package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/startpacket/internal/common"
	"github.com/joseph-ayodele/startpacket/internal/pipeline"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// FileProcessor is the work each queued job runs.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Outcome, error)
}

// ResultFunc observes every finished job.
type ResultFunc func(job Job, out *pipeline.Outcome, err error)

type ProcessorQueue struct {
	proc     FileProcessor
	logger   *slog.Logger
	workers  int
	timeout  time.Duration
	onResult ResultFunc

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// mu is held for reading while sending so Shutdown never closes ch
	// under a blocked sender
	mu     sync.RWMutex
	closed bool

	// pending counts queued or running jobs per path
	pendingMu sync.Mutex
	pending   map[string]int
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultHandler(fn ResultFunc) Option {
	return func(q *ProcessorQueue) { q.onResult = fn }
}

func NewProcessorQueue(proc FileProcessor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		pending: map[string]int{},
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	defer q.release(job.Path)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	ctx = common.WithRequestID(ctx, job.TraceID)
	out, err := q.proc.ProcessFile(ctx, job.Path)
	cancel()

	if err != nil {
		q.logger.Error("processing failed", "worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", err)
	} else {
		q.logger.Info("processed file successfully",
			"worker_id", workerID,
			"path", job.Path,
			"job_id", out.JobID,
			"waited_ms", time.Since(job.SubmittedAt).Milliseconds(),
		)
	}
	if q.onResult != nil {
		q.onResult(job, out, err)
	}
}

func (q *ProcessorQueue) release(path string) {
	q.pendingMu.Lock()
	if q.pending[path] <= 1 {
		delete(q.pending, path)
	} else {
		q.pending[path]--
	}
	q.pendingMu.Unlock()
}

// claim marks path pending, reporting false when it already was.
func (q *ProcessorQueue) claim(path string, force bool) bool {
	q.pendingMu.Lock()
	defer q.pendingMu.Unlock()
	if q.pending[path] > 0 && !force {
		return false
	}
	q.pending[path]++
	return true
}

// Enqueue schedules job. A path already waiting or running is skipped
// unless job.Force is set. When the buffer is full Enqueue blocks until a
// worker frees a slot or ctx ends.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return ErrQueueClosed
	}
	if !q.claim(job.Path, job.Force) {
		q.logger.Debug("skipping duplicate", "path", job.Path)
		return nil
	}

	select {
	case q.ch <- job:
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		select {
		case q.ch <- job:
		case <-ctx.Done():
			q.release(job.Path)
			return ctx.Err()
		}
	}
	q.logger.Info("queued file for processing", "path", job.Path, "force", job.Force)
	return nil
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
