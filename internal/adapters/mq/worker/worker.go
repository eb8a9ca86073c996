// Package worker resolves sign triads for queued profile recompute events.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/astrocore/internal/adapters/mq/queue"
	"github.com/okian/astrocore/internal/domain/model"
	"github.com/okian/astrocore/pkg/logger"
	"github.com/okian/astrocore/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
)

// Event abstracts what workers read off the queue.
type Event = queue.Event

// Resolver computes the sign triad for a birth event.
type Resolver interface {
	ResolveSigns(ctx context.Context, b model.BirthEvent) (model.SignTriad, error)
}

// Writer stores the outcome of a resolution on the profile.
type Writer interface {
	WriteSigns(ctx context.Context, id string, version int64, triad *model.SignTriad, resolveErr error) (bool, error)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue() <-chan Event
}

// Counters are shared between the workers of a pool.
type Counters struct {
	Processed atomic.Int64
	Failed    atomic.Int64
	Stale     atomic.Int64
}

// InMemoryWorker processes events from a Queue.
type InMemoryWorker struct {
	queue    Queue
	resolver Resolver
	writer   Writer
	name     string
	counters *Counters
	logger   logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, resolver Resolver, writer Writer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		resolver: resolver,
		writer:   writer,
		name:     "worker",
		counters: &Counters{},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes events until the queue is closed and drained or ctx is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	events := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, e); err != nil {
				w.logger.Error(ctx, "error processing event",
					logger.String("worker", w.name),
					logger.String("event_id", e.EventID),
					logger.Error(err),
				)
			}
		}
	}
}

// process resolves one event. A resolution failure is recorded on the
// profile and is not an error of the worker; only a failed write is.
func (w *InMemoryWorker) process(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	triad, resolveErr := w.resolver.ResolveSigns(ctx, e.Birth)
	if resolveErr != nil {
		w.counters.Failed.Add(1)
		metrics.RecordWorkerError()
		w.logger.Warn(ctx, "sign resolution failed",
			logger.String("profile_id", e.ProfileID),
			logger.Int64("version", e.Version),
			logger.Error(resolveErr),
		)
	}

	var stored *model.SignTriad
	if resolveErr == nil {
		stored = &triad
	}
	written, err := w.writer.WriteSigns(ctx, e.ProfileID, e.Version, stored, resolveErr)
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("write signs for profile %s: %w", e.ProfileID, err)
	}
	if !written {
		w.counters.Stale.Add(1)
		metrics.RecordProfileConflict()
		w.logger.Debug(ctx, "discarded stale resolution",
			logger.String("profile_id", e.ProfileID),
			logger.Int64("version", e.Version),
		)
	}

	w.counters.Processed.Add(1)
	metrics.RecordEventProcessed()
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters
	logger   logger.Logger

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started atomic.Bool
}

// NewPool creates workerCount workers. A count below one defaults to twice
// the number of CPUs.
func NewPool(workerCount int, q Queue, resolver Resolver, writer Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	// Options are applied to a template so the pool uses the same logger.
	tmpl := NewInMemoryWorker(q, resolver, writer, opts...)
	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &Counters{},
		logger:   tmpl.logger,
	}
	for i := 0; i < workerCount; i++ {
		w := *tmpl
		w.name = tmpl.name + "-" + strconv.Itoa(i)
		w.counters = p.counters
		p.workers[i] = &w
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Counters returns the pool's shared counters.
func (p *Pool) Counters() *Counters { return p.counters }

// Start starts all workers. Calling it twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown closes the queue and waits for workers to drain it. If ctx
// expires first the workers are cancelled and the remaining events dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	if !p.started.Load() {
		return nil
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	defer metrics.UpdateWorkerCount(0)
	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
