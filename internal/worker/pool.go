// Package worker drains the run queue with a fixed set of goroutines.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/user/profile-collector/internal/collector"
	"github.com/user/profile-collector/internal/repository"
	"github.com/user/profile-collector/internal/usecase"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config sizes and paces the pool.
type Config struct {
	Workers       int
	RunsPerMinute float64
	// PollInterval is how long an idle worker sleeps before polling again.
	PollInterval time.Duration
}

// Pool runs queued collections. Starting a run, including polling an empty
// queue, takes a token from a limiter shared by all workers.
type Pool struct {
	collection usecase.Collection
	cfg        Config
	limiter    *rate.Limiter
	logger     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPool(collection usecase.Collection, cfg Config, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	limit := rate.Inf
	if cfg.RunsPerMinute > 0 {
		limit = rate.Limit(cfg.RunsPerMinute / 60)
	}
	return &Pool{
		collection: collection,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, cfg.Workers),
		logger:     logger,
	}
}

// Start launches the workers. They run until Stop is called or ctx is done.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("Worker pool started", zap.Int("workers", p.cfg.Workers), zap.Float64("runs_per_minute", p.cfg.RunsPerMinute))
}

// Stop cancels in-flight runs and waits for every worker to return.
// Cancelled runs still record their partial results.
func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.logger.With(zap.Int("worker", id))
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		err := p.collection.ProcessRunFromQueue(ctx)
		switch {
		case err == nil:
			continue
		case errors.Is(err, repository.ErrQueueEmpty):
		case ctx.Err() != nil:
			return
		default:
			log.Error("Failed to process run", zap.Error(err))
		}
		if collector.SleepContext(ctx, p.cfg.PollInterval) != nil {
			return
		}
	}
}
