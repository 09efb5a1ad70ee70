// Package eventloop runs page tasks one at a time on a single goroutine.
// It plays the role of the UI thread: every read or write of DOM handles
// happens inside a task, so no other locking is needed around the document.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

// ErrStopped is returned when a task is posted after the loop has exited.
var ErrStopped = errors.New("event loop stopped")

// Task states. A task runs only if it moves from pending to running; a
// caller that gives up first moves it to abandoned and it never runs.
const (
	taskPending int32 = iota
	taskRunning
	taskAbandoned
)

type task struct {
	fn    func()
	done  chan struct{}
	state *atomic.Int32
}

// Loop is a serial task queue.
type Loop struct {
	tasks   chan task
	stopped chan struct{}
	logger  logger.Logger
	once    sync.Once
	wg      sync.WaitGroup
}

// New creates a loop with a task buffer of the given size.
func New(buffer int, log logger.Logger) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		tasks:   make(chan task, buffer),
		stopped: make(chan struct{}),
		logger:  log,
	}
}

// Run executes tasks until ctx is done. It blocks.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.stopped) })
	for {
		select {
		case t := <-l.tasks:
			l.exec(t)
		case <-ctx.Done():
			return
		}
	}
}

// Stopped is closed once Run has returned.
func (l *Loop) Stopped() <-chan struct{} {
	return l.stopped
}

func (l *Loop) exec(t task) {
	defer close(t.done)
	if !t.state.CompareAndSwap(taskPending, taskRunning) {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("panic in event loop task",
				logger.String("panic", fmt.Sprint(r)))
		}
	}()
	t.fn()
}

// Do runs fn on the loop and waits for it to finish. An error means fn
// did not run and never will: once the caller gives up, a queued fn is
// skipped. If fn has already started, Do waits for it and returns nil.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan struct{}), state: new(atomic.Int32)}
	select {
	case l.tasks <- t:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	var err error
	select {
	case <-t.done:
		return nil
	case <-l.stopped:
		err = ErrStopped
	case <-ctx.Done():
		err = ctx.Err()
	}
	if t.state.CompareAndSwap(taskPending, taskAbandoned) {
		return err
	}
	// Already running: tasks are short, let it finish.
	<-t.done
	return nil
}

// Go runs a user action on its own goroutine. Failures and panics stop at
// this boundary: they are logged and never reach the loop.
func (l *Loop) Go(ctx context.Context, name string, action func(context.Context) error) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("panic in page action",
					logger.String("action", name),
					logger.String("panic", fmt.Sprint(r)))
			}
		}()
		if err := action(ctx); err != nil {
			l.logger.Debug("page action finished with error",
				logger.String("action", name),
				logger.Error(err))
		}
	}()
}

// Wait blocks until every action started with Go has returned.
func (l *Loop) Wait() {
	l.wg.Wait()
}
