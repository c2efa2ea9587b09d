package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"chordring/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n int32

	go Loop(ctx, 2*time.Millisecond, logger.NopLogger{}, "test", func(context.Context) error {
		atomic.AddInt32(&n, 1)
		return nil
	}, nil)

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(10 * time.Millisecond)

	got := atomic.LoadInt32(&n)
	assert.True(t, got > 0, "task should have fired at least once")
}

func TestLoopCancelsOnUnrecoverableTaskError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	innerCtx, innerCancel := context.WithCancel(ctx)
	var n int32

	done := make(chan struct{})
	go func() {
		Loop(innerCtx, time.Millisecond, logger.NopLogger{}, "test", func(context.Context) error {
			count := atomic.AddInt32(&n, 1)
			if count == 2 {
				return assert.AnError
			}
			return nil
		}, innerCancel)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Loop did not stop after an unrecoverable task error")
	}
	assert.Error(t, innerCtx.Err())
}

func TestGroupStartWaitsForAllEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var a, b int32
	g := NewGroup(logger.NopLogger{})

	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	g.Start(ctx,
		Entry{Name: "a", Interval: time.Millisecond, Task: func(context.Context) error {
			atomic.AddInt32(&a, 1)
			return nil
		}},
		Entry{Name: "b", Interval: time.Millisecond, Task: func(context.Context) error {
			atomic.AddInt32(&b, 1)
			return nil
		}},
	)

	assert.True(t, atomic.LoadInt32(&a) > 0)
	assert.True(t, atomic.LoadInt32(&b) > 0)
}
