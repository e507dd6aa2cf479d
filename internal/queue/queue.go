package queue

import (
	"log/slog"
	"sync"
	"time"
)

const publishTimeout = 10 * time.Second

// Job is one webhook payload awaiting processing.
type Job struct {
	Payload  map[string]any
	Attempt  int // 1-based
	Received time.Time
}

// Memory is a Go-channel based job queue for in-process hand-off between the
// webhook ingress and the worker pool.
type Memory struct {
	jobs   chan Job
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger
}

// New creates a Memory queue with the given buffer size.
func New(bufferSize int, logger *slog.Logger) *Memory {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Memory{
		jobs:   make(chan Job, bufferSize),
		logger: logger,
	}
}

// Publish enqueues a job. Blocks up to 10 seconds if the queue is full
// instead of dropping.
func (q *Memory) Publish(job Job) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.logger.Warn("attempted to publish to closed queue")
		return
	}
	if job.Attempt < 1 {
		job.Attempt = 1
	}

	select {
	case q.jobs <- job:
	default:
		q.logger.Warn("queue full, waiting...", "attempt", job.Attempt)
		timer := time.NewTimer(publishTimeout)
		defer timer.Stop()
		select {
		case q.jobs <- job:
			q.logger.Info("job enqueued after wait")
		case <-timer.C:
			q.logger.Error("job dropped: queue full for 10s", "attempt", job.Attempt)
		}
	}
}

func (q *Memory) Subscribe() <-chan Job {
	return q.jobs
}

// Len reports how many jobs are waiting.
func (q *Memory) Len() int {
	return len(q.jobs)
}

func (q *Memory) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}
