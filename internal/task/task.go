// Package task runs fire-and-forget background work.
//
// Tasks start immediately in their own goroutine and are not sequenced
// relative to each other. A failed task is reported to the error hook and
// then forgotten: there is no retry and no cancellation.
package task

import (
	"context"
	"sync"
)

// Func is a unit of deferred work.
type Func func(ctx context.Context) error

// ErrorHook receives the name and error of every failed task.
type ErrorHook func(name string, err error)

// Runner owns the goroutines started by Go.
type Runner struct {
	ctx     context.Context
	onError ErrorHook

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending int
	started uint64
	failed  uint64
}

// NewRunner returns a Runner whose tasks run with ctx. onError may be nil.
func NewRunner(ctx context.Context, onError ErrorHook) *Runner {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Runner{ctx: ctx, onError: onError}
}

// Go starts fn in the background and returns without waiting for it.
func (r *Runner) Go(name string, fn Func) {
	r.mu.Lock()
	r.pending++
	r.started++
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		err := fn(r.ctx)

		r.mu.Lock()
		r.pending--
		if err != nil {
			r.failed++
		}
		r.mu.Unlock()

		if err != nil && r.onError != nil {
			r.onError(name, err)
		}
	}()
}

// Wait blocks until every task started so far has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Stats reports task counters.
type Stats struct {
	Pending int
	Started uint64
	Failed  uint64
}

// Stats returns a snapshot of the runner counters.
func (r *Runner) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Pending: r.pending, Started: r.started, Failed: r.failed}
}
