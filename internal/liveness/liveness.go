// Package liveness implements the bounded-timeout probe spec.md §4.3
// calls for, grounded in the Java original's PeerImpl.isAlive (a
// FutureTask given 500ms to complete a round trip before being treated
// as dead) and the teacher's equivalent client-pool health checks.
package liveness

import (
	"context"
	"time"

	"chordring/internal/peer"
)

// DefaultTimeout is T_live from spec.md §6.
const DefaultTimeout = 500 * time.Millisecond

// Prober checks whether a remote peer is still responsive.
type Prober struct {
	Timeout time.Duration
}

// New builds a Prober with the given timeout; zero uses DefaultTimeout.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{Timeout: timeout}
}

// IsAlive issues a cheap round trip (Key) against p and reports whether
// it completed within the probe's timeout. Any error — network failure,
// deadline exceeded, or the parent context being canceled — counts as
// dead, matching the Java source's "any exception means dead" rule.
func (pr *Prober) IsAlive(ctx context.Context, p peer.Peer) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pr.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := p.Key(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		return err == nil
	case <-ctx.Done():
		return false
	}
}
