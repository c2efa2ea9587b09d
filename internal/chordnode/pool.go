package chordnode

import (
	"context"
	"fmt"
	"sync"

	"chordring/internal/peer"
)

// Dialer opens a live peer.Peer handle to addr, following the teacher's
// client2.Pool.GetFromPool/DialEphemeral split: a cached pool for
// steady-state routing plus a way to reach an address the pool hasn't
// seen yet (join bootstrap).
type Dialer func(ctx context.Context, addr string) (peer.Peer, error)

// pool caches dialed peer.Peer handles by address so stabilization and
// routing don't redial on every tick.
type pool struct {
	mu    sync.Mutex
	dial  Dialer
	conns map[string]peer.Peer
}

func newPool(dial Dialer) *pool {
	return &pool{dial: dial, conns: make(map[string]peer.Peer)}
}

// get returns a cached peer.Peer for addr, dialing on first use.
func (p *pool) get(ctx context.Context, addr string) (peer.Peer, error) {
	p.mu.Lock()
	if c, ok := p.conns[addr]; ok {
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	c, err := p.dial(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("chordnode: dialing %s: %w", addr, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.conns[addr]; ok {
		// Lost the race to another goroutine dialing the same address;
		// keep the one already cached and discard ours if closable.
		if closer, ok := c.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		return existing, nil
	}
	p.conns[addr] = c
	return c, nil
}

// drop evicts addr from the cache, used when a peer is found to be dead.
func (p *pool) drop(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.conns[addr]; ok {
		if closer, ok := c.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(p.conns, addr)
	}
}

// closeAll closes every cached connection, used on node shutdown.
func (p *pool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for addr, c := range p.conns {
		if closer, ok := c.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(p.conns, addr)
	}
}
