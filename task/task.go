/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package task runs goroutines behind handles that cancel them.
package task

import (
	"context"
	"time"
)

// Task is a handle to one goroutine that is cancelled as soon as the handle
// is stopped. The goroutine observes cancellation through its context at
// every suspension point and must re-check ctx.Err() after acquiring any lock
// before it mutates shared state.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Spawn runs fn in a new goroutine whose context is derived from parent.
func Spawn(parent context.Context, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()
		fn(ctx)
	}()

	return t
}

// Stop cancels the task without waiting for it to return. It is safe to call
// on a nil Task and to call more than once.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.cancel()
}

// Done is closed once the task function has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Sleep waits for d or until ctx is cancelled, reporting whether the full
// duration elapsed.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
