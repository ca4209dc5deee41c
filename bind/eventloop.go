package bind

import (
	"context"
	"fmt"
)

// EventLoop owns a Runtime on one goroutine. Tasks submitted from anywhere
// run in order on that goroutine and every task is followed by a flush, so
// batched effects see the state a whole task left behind.
type EventLoop struct {
	rt    *Runtime
	tasks chan task
	done  chan struct{}
}

type task struct {
	fn       func()
	finished chan struct{}
}

func NewEventLoop(rt *Runtime, backlog int) *EventLoop {
	return &EventLoop{
		rt:    rt,
		tasks: make(chan task, backlog),
		done:  make(chan struct{}),
	}
}

func (l *EventLoop) Runtime() *Runtime {
	return l.rt
}

// Submit queues fn without waiting for it to run.
func (l *EventLoop) Submit(ctx context.Context, fn func()) error {
	return l.submit(ctx, task{fn: fn})
}

func (l *EventLoop) submit(ctx context.Context, t task) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- t:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop and waits until it and the flush after it are
// done.
func (l *EventLoop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.submit(ctx, task{fn: fn, finished: finished}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes tasks until ctx is cancelled. It must be called once.
func (l *EventLoop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-l.tasks:
			l.run(t)
		}
	}
}

func (l *EventLoop) run(t task) {
	if t.finished != nil {
		defer close(t.finished)
	}
	defer l.rt.Flush()
	defer func() {
		if r := recover(); r != nil {
			l.rt.log.Error(fmt.Errorf("panic: %v", r), "task failed")
		}
	}()
	t.fn()
}
