// Package worker runs insight generation jobs in the background.
package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

// Pool manages background workers for insight jobs.
type Pool struct {
	gen     ports.InsightGenerator
	timeout time.Duration
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
	jobs    chan ports.InsightJob
	wg      sync.WaitGroup
}

var _ ports.InsightDispatcher = (*Pool)(nil)

// NewPool creates a pool with the given queue size. A positive timeout
// bounds each generation call; zero leaves it unbounded.
func NewPool(gen ports.InsightGenerator, queueSize int, timeout time.Duration, log zerolog.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		gen:     gen,
		timeout: timeout,
		log:     log.With().Str("component", "insight-pool").Logger(),
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan ports.InsightJob, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop closes the queue and cancels the pool's context, then waits for the
// workers to exit. Jobs still queued resolve with context.Canceled without
// reaching the generator.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job ports.InsightJob) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ports.ErrDispatcherStopped
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		p.log.Warn().Str("session", job.SessionID).Str("song", job.SongID).Msg("dropping insight job")
		return ports.ErrQueueFull
	}
}

func (p *Pool) processJob(job ports.InsightJob) {
	if err := p.ctx.Err(); err != nil {
		p.log.Debug().Str("session", job.SessionID).Str("song", job.SongID).Msg("pool stopped, skipping insight job")
		if job.Resolve != nil {
			job.Resolve("", err)
		}
		return
	}

	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.gen.GenerateInsight(ctx, job.Prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("worker: empty insight: %w", domain.ErrInsightFailed)
	}

	event := p.log.Debug()
	if err != nil {
		event = p.log.Warn().Err(err)
	}
	event.Str("session", job.SessionID).Str("song", job.SongID).Dur("took", time.Since(start)).Msg("insight job finished")

	if job.Resolve != nil {
		job.Resolve(text, err)
	}
}
