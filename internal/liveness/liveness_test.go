package liveness

import (
	"context"
	"errors"
	"testing"
	"time"

	"chordring/internal/peer"
	"chordring/internal/ring"

	"github.com/stretchr/testify/assert"
)

type fakePeer struct {
	delay time.Duration
	err   error
}

func (f *fakePeer) Descriptor() peer.Descriptor { return peer.Descriptor{} }
func (f *fakePeer) Key(ctx context.Context) (ring.ID, error) {
	select {
	case <-time.After(f.delay):
		return ring.ID{}, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
func (f *fakePeer) Successor(context.Context) (peer.Descriptor, error)   { return peer.Descriptor{}, nil }
func (f *fakePeer) Successors(context.Context) ([]peer.Descriptor, error) { return nil, nil }
func (f *fakePeer) Predecessor(context.Context) (peer.Descriptor, error) { return peer.Descriptor{}, nil }
func (f *fakePeer) FindSuccessor(context.Context, ring.ID) (peer.Descriptor, error) {
	return peer.Descriptor{}, nil
}
func (f *fakePeer) Notify(context.Context, peer.Descriptor) error     { return nil }
func (f *fakePeer) Get(context.Context, ring.ID) ([]byte, bool, error) { return nil, false, nil }
func (f *fakePeer) Put(context.Context, ring.ID, []byte) ([]byte, error) { return nil, nil }
func (f *fakePeer) Offer(context.Context, []peer.KV) error            { return nil }

func TestIsAliveRespondsQuickly(t *testing.T) {
	pr := New(50 * time.Millisecond)
	assert.True(t, pr.IsAlive(context.Background(), &fakePeer{delay: time.Millisecond}))
}

func TestIsAliveTimesOut(t *testing.T) {
	pr := New(10 * time.Millisecond)
	assert.False(t, pr.IsAlive(context.Background(), &fakePeer{delay: 100 * time.Millisecond}))
}

func TestIsAliveFalseOnError(t *testing.T) {
	pr := New(50 * time.Millisecond)
	assert.False(t, pr.IsAlive(context.Background(), &fakePeer{err: errors.New("boom")}))
}

func TestIsAliveFalseOnNilPeer(t *testing.T) {
	pr := New(50 * time.Millisecond)
	assert.False(t, pr.IsAlive(context.Background(), nil))
}
