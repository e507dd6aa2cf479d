package worker

import (
	"context"
	"log/slog"
	"sync"

	"sitebot/internal/metrics"
	"sitebot/internal/queue"
)

// Pool consumes queued payloads and processes them with a bounded number of
// attempts per message. Each message is handled by exactly one worker at a
// time; failed messages are re-enqueued until the attempt budget runs out.
type Pool struct {
	queue       *queue.Memory
	processor   *Processor
	workers     int
	maxAttempts int
	logger      *slog.Logger
}

type PoolConfig struct {
	Queue       *queue.Memory
	Processor   *Processor
	Workers     int
	MaxAttempts int
	Logger      *slog.Logger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pool{
		queue:       cfg.Queue,
		processor:   cfg.Processor,
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		logger:      cfg.Logger,
	}
}

// Run starts the workers and blocks until the context is cancelled or the
// queue is closed and drained.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) work(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.queue.Subscribe():
			if !ok {
				return
			}
			metrics.QueueDepth.Set(int64(p.queue.Len()))

			err := p.processor.Process(ctx, job.Payload)
			if err == nil {
				continue
			}

			if job.Attempt >= p.maxAttempts {
				p.logger.Error("message dropped after retries",
					"worker", id, "attempts", job.Attempt, "err", err)
				continue
			}
			job.Attempt++
			p.logger.Warn("requeueing failed message",
				"worker", id, "attempt", job.Attempt, "err", err)
			p.queue.Publish(job)
		}
	}
}
