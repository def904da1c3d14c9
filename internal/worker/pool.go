package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/martinsuchenak/pingsweep/internal/log"
)

// Task is a unit of work executed by one pool worker. The context is
// canceled when the pool stops or its parent context ends.
type Task func(ctx context.Context)

// Pool runs submitted tasks across a fixed number of goroutines, so the
// number of in-flight tasks never exceeds the configured size.
type Pool struct {
	size   int
	tasks  chan Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPool creates a pool with the given number of workers. The pool's
// lifetime is bound to ctx: when ctx ends, submissions fail and running
// tasks see a canceled context.
func NewPool(ctx context.Context, size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("worker pool size must be positive, got %d", size)
	}

	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		size:   size,
		tasks:  make(chan Task),
		ctx:    poolCtx,
		cancel: cancel,
	}, nil
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Debug("Worker pool started", "workers", p.size)
}

// Submit hands a task to the pool, blocking until a worker can accept it.
// It fails once the pool has been stopped or its context has ended.
func (p *Pool) Submit(task Task) error {
	select {
	case p.tasks <- task:
		return nil
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

// Close marks the task stream complete and waits for the workers to drain
// everything already submitted.
func (p *Pool) Close() {
	close(p.tasks)
	p.wg.Wait()
}

// Stop cancels the pool context and waits for the workers to exit. Queued
// tasks are abandoned; in-flight tasks observe the cancellation through
// their context.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			task(p.ctx)
		}
	}
}
