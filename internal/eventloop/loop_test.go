package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/auctionsync/internal/logger"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	l := New(8, logger.NewNop())
	go l.Run(ctx)
	t.Cleanup(cancel)
	return l, cancel
}

func TestDoRunsSerially(t *testing.T) {
	l, _ := startLoop(t)

	// Unsynchronised counter: the race detector flags it if tasks overlap.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() { counter++ })
		}()
	}
	wg.Wait()

	var got int
	require.NoError(t, l.Do(context.Background(), func() { got = counter }))
	assert.Equal(t, 50, got)
}

func TestDoRecoversPanic(t *testing.T) {
	l, _ := startLoop(t)

	require.NoError(t, l.Do(context.Background(), func() { panic("boom") }))

	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran, "loop should keep running after a panicking task")
}

func TestDoAfterStop(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	<-l.Stopped()

	err := l.Do(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDoContextCancelled(t *testing.T) {
	l := New(1, logger.NewNop()) // never started
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// First post fills the buffer, the wait then times out.
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGoContainsFailures(t *testing.T) {
	l, _ := startLoop(t)

	l.Go(context.Background(), "fails", func(context.Context) error {
		return errors.New("network down")
	})
	l.Go(context.Background(), "panics", func(context.Context) error {
		panic("unexpected")
	})
	done := make(chan struct{})
	l.Go(context.Background(), "ok", func(context.Context) error {
		close(done)
		return nil
	})

	l.Wait()
	select {
	case <-done:
	default:
		t.Fatal("healthy action did not run")
	}
}

func TestDoSkipsAbandonedTask(t *testing.T) {
	l, _ := startLoop(t)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	errc := make(chan error, 1)
	go func() {
		errc <- l.Do(ctx, func() { ran.Store(true) })
	}()

	// Give the second task time to be queued behind the blocked one.
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	close(release)
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.False(t, ran.Load(), "task ran after its caller gave up")
}

func TestDoWaitsForRunningTask(t *testing.T) {
	l, _ := startLoop(t)

	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	err := l.Do(ctx, func() {
		cancel()
		ran = true
	})
	assert.NoError(t, err, "a task that started must report success")
	assert.True(t, ran)
}
