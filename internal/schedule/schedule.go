// Package schedule runs the node's periodic background tasks —
// stabilize, fix-fingers, check-predecessor — on independent tickers
// that stop cleanly when the node shuts down. It generalizes the Java
// original's threading.Worker/Schedule pair and the teacher's three
// ticker-driven loops in node/chord/stabilization.go into a single
// reusable runner.
package schedule

import (
	"context"
	"time"

	"chordring/internal/logger"
)

// Task is a single periodic unit of work. Transient per-attempt failures
// (a single failed RPC, a timed-out probe) should be swallowed inside
// the task itself and logged there, matching the Java original's
// stabilize()/fixFingers() retrying on the next tick regardless. A
// non-nil error returned from Task is treated as unrecoverable: it
// cancels the whole Group the task runs in (spec.md §4.4, "cancel on
// unrecoverable error").
type Task func(ctx context.Context) error

// Loop runs task every interval until ctx is canceled or task returns an
// unrecoverable error, in which case Loop logs it, invokes cancel (if
// non-nil) to stop any sibling loops sharing ctx, and returns.
func Loop(ctx context.Context, interval time.Duration, lgr logger.Logger, name string, task Task, cancel context.CancelFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := task(ctx); err != nil {
				lgr.Error("periodic task failed unrecoverably, stopping scheduler", logger.F("task", name), logger.F("err", err))
				if cancel != nil {
					cancel()
				}
				return
			}
		}
	}
}

// Group starts each named task in its own goroutine and returns once all
// of them have returned (i.e. once ctx is canceled), mirroring the
// teacher's StartStabilizers spawning stabilizeLoop/fixFingersLoop/
// checkPredecessorLoop as independent goroutines.
type Group struct {
	lgr logger.Logger
}

// NewGroup builds a Group that logs task failures through lgr.
func NewGroup(lgr logger.Logger) *Group {
	return &Group{lgr: lgr}
}

// Entry is one periodic task and the interval it runs at.
type Entry struct {
	Name     string
	Interval time.Duration
	Task     Task
}

// Start launches every entry's Loop in its own goroutine and blocks
// until ctx is canceled and all of them have exited. The entries share a
// derived, cancelable context: if any one of them returns an
// unrecoverable error, the whole group is canceled and every other entry
// stops too, rather than continuing to run shorthanded.
func (g *Group) Start(ctx context.Context, entries ...Entry) {
	groupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{}, len(entries))
	for _, e := range entries {
		e := e
		go func() {
			Loop(groupCtx, e.Interval, g.lgr, e.Name, e.Task, cancel)
			done <- struct{}{}
		}()
	}
	for range entries {
		<-done
	}
}
