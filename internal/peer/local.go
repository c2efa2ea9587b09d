package peer

import (
	"context"

	"chordring/internal/ring"
)

// LocalPeer wraps a Peer implementation that already lives in this
// process (the node's own chordnode.Node), so that routing-table entries
// pointing back at the local node skip the network entirely — per
// spec.md §9's guidance to hide the local/remote distinction behind one
// interface while still avoiding a loopback round trip for self-calls.
type LocalPeer struct {
	backend Peer
}

// NewLocalPeer wraps backend (typically the node itself) as a Peer that
// callers can store in a finger table or successor list next to
// RemotePeer entries.
func NewLocalPeer(backend Peer) *LocalPeer {
	return &LocalPeer{backend: backend}
}

func (l *LocalPeer) Descriptor() Descriptor { return l.backend.Descriptor() }

func (l *LocalPeer) Key(ctx context.Context) (ring.ID, error) {
	return l.backend.Key(ctx)
}

func (l *LocalPeer) Successor(ctx context.Context) (Descriptor, error) {
	return l.backend.Successor(ctx)
}

func (l *LocalPeer) Successors(ctx context.Context) ([]Descriptor, error) {
	return l.backend.Successors(ctx)
}

func (l *LocalPeer) Predecessor(ctx context.Context) (Descriptor, error) {
	return l.backend.Predecessor(ctx)
}

func (l *LocalPeer) FindSuccessor(ctx context.Context, id ring.ID) (Descriptor, error) {
	return l.backend.FindSuccessor(ctx, id)
}

func (l *LocalPeer) Notify(ctx context.Context, candidate Descriptor) error {
	return l.backend.Notify(ctx, candidate)
}

func (l *LocalPeer) Get(ctx context.Context, key ring.ID) ([]byte, bool, error) {
	return l.backend.Get(ctx, key)
}

func (l *LocalPeer) Put(ctx context.Context, key ring.ID, value []byte) ([]byte, error) {
	return l.backend.Put(ctx, key, value)
}

func (l *LocalPeer) Offer(ctx context.Context, items []KV) error {
	return l.backend.Offer(ctx, items)
}
