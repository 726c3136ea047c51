// Package batch provides bounded-size, bounded-wait batching of arbitrary
// asynchronous operations with retry. Operations are submitted
// independently; each submission returns a future resolved when its
// operation finishes.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/doccache"
	"golang.org/x/sync/errgroup"
)

// Defaults for the processor configuration.
const (
	DefaultMaxBatchSize = 10
	DefaultMaxWait      = 100 * time.Millisecond
	DefaultRetryCount   = 3
	DefaultRetryDelay   = time.Second
)

// Operation is a unit of work producing a value of type T.
type Operation[T any] func(ctx context.Context) (T, error)

// Future resolves to the outcome of one submitted operation.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Wait blocks until the operation finishes, the future is cancelled via
// Clear, or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) resolve(value T, err error) {
	f.value = value
	f.err = err
	close(f.done)
}

type item[T any] struct {
	op     Operation[T]
	future *Future[T]
}

// Mode selects how a flushed batch executes.
type Mode int

const (
	// Parallel runs all items of a batch concurrently.
	Parallel Mode = iota
	// Sequential runs items one at a time in submission order.
	Sequential
)

// Processor queues operations and flushes them as batches, either when the
// queue reaches the batch size limit or when the oldest queued item has
// waited long enough, whichever comes first.
type Processor[T any] struct {
	maxBatchSize int
	maxWait      time.Duration
	retryCount   int
	retryDelay   time.Duration
	mode         Mode

	mu    sync.Mutex
	queue []item[T]
	timer *time.Timer
	wg    sync.WaitGroup
}

// Option configures a Processor.
type Option func(*config)

type config struct {
	maxBatchSize int
	maxWait      time.Duration
	retryCount   int
	retryDelay   time.Duration
	mode         Mode
}

// WithMaxBatchSize sets the queue length that forces a flush.
func WithMaxBatchSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxBatchSize = n
		}
	}
}

// WithMaxWait sets how long the oldest queued item may wait before a flush.
func WithMaxWait(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.maxWait = d
		}
	}
}

// WithRetry sets the per-item attempt count and the fixed delay between
// attempts.
func WithRetry(count int, delay time.Duration) Option {
	return func(c *config) {
		if count > 0 {
			c.retryCount = count
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithMode selects parallel or sequential batch execution.
func WithMode(m Mode) Option {
	return func(c *config) {
		c.mode = m
	}
}

// New creates a Processor. The constructor starts no background work; the
// flush timer is armed when the first item is queued.
func New[T any](opts ...Option) *Processor[T] {
	cfg := config{
		maxBatchSize: DefaultMaxBatchSize,
		maxWait:      DefaultMaxWait,
		retryCount:   DefaultRetryCount,
		retryDelay:   DefaultRetryDelay,
		mode:         Parallel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Processor[T]{
		maxBatchSize: cfg.maxBatchSize,
		maxWait:      cfg.maxWait,
		retryCount:   cfg.retryCount,
		retryDelay:   cfg.retryDelay,
		mode:         cfg.mode,
	}
}

// Submit queues an operation and returns its future. Reaching the batch
// size limit flushes the queue immediately.
func (p *Processor[T]) Submit(op Operation[T]) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	p.mu.Lock()
	p.queue = append(p.queue, item[T]{op: op, future: f})
	if len(p.queue) == 1 {
		p.timer = time.AfterFunc(p.maxWait, func() { p.Flush(context.Background()) })
	}
	flush := len(p.queue) >= p.maxBatchSize
	var batch []item[T]
	if flush {
		batch = p.takeLocked()
	}
	p.mu.Unlock()

	if flush {
		p.run(context.Background(), batch)
	}
	return f
}

// Flush forces immediate processing of whatever is queued. It returns when
// the batch has been dispatched; futures resolve as items finish.
func (p *Processor[T]) Flush(ctx context.Context) {
	p.mu.Lock()
	batch := p.takeLocked()
	p.mu.Unlock()

	p.run(ctx, batch)
}

// Clear discards queued-but-unstarted items. Their futures reject with a
// conflict error; callers must treat this as cancellation, not completion.
func (p *Processor[T]) Clear() {
	p.mu.Lock()
	batch := p.takeLocked()
	p.mu.Unlock()

	var zero T
	for _, it := range batch {
		it.future.resolve(zero, doccache.Errorf(doccache.ECONFLICT, "operation cancelled before execution"))
	}
}

// Drain flushes the queue and waits for all in-flight items to finish.
func (p *Processor[T]) Drain(ctx context.Context) {
	p.Flush(ctx)
	p.wg.Wait()
}

// takeLocked removes and returns the queued items. Must be called with
// p.mu held.
func (p *Processor[T]) takeLocked() []item[T] {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	batch := p.queue
	p.queue = nil
	return batch
}

func (p *Processor[T]) run(ctx context.Context, batch []item[T]) {
	if len(batch) == 0 {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.mode == Sequential {
			for _, it := range batch {
				it.future.resolve(p.attempt(ctx, it.op))
			}
			return
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, it := range batch {
			g.Go(func() error {
				it.future.resolve(p.attempt(gctx, it.op))
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// attempt runs one operation under the retry policy: up to retryCount
// attempts with a fixed delay between them. The caller only sees the final
// attempt's outcome.
func (p *Processor[T]) attempt(ctx context.Context, op Operation[T]) (T, error) {
	var value T
	var err error

	for i := 0; i < p.retryCount; i++ {
		value, err = op(ctx)
		if err == nil {
			return value, nil
		}
		if i >= p.retryCount-1 {
			break
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}

	var zero T
	return zero, err
}
