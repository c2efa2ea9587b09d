package chordnode

import (
	"context"
	"testing"

	"chordring/internal/peer"
	"chordring/internal/ring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPeer is a minimal peer.Peer used purely to populate routing-table
// slots in tests, without standing up any transport.
type stubPeer struct{ d peer.Descriptor }

func (s stubPeer) Descriptor() peer.Descriptor                              { return s.d }
func (s stubPeer) Key(context.Context) (ring.ID, error)                     { return s.d.Key, nil }
func (s stubPeer) Successor(context.Context) (peer.Descriptor, error)       { return s.d, nil }
func (s stubPeer) Successors(context.Context) ([]peer.Descriptor, error)    { return nil, nil }
func (s stubPeer) Predecessor(context.Context) (peer.Descriptor, error)     { return peer.Descriptor{}, nil }
func (s stubPeer) FindSuccessor(context.Context, ring.ID) (peer.Descriptor, error) {
	return s.d, nil
}
func (s stubPeer) Notify(context.Context, peer.Descriptor) error      { return nil }
func (s stubPeer) Get(context.Context, ring.ID) ([]byte, bool, error) { return nil, false, nil }
func (s stubPeer) Put(context.Context, ring.ID, []byte) ([]byte, error) { return nil, nil }
func (s stubPeer) Offer(context.Context, []peer.KV) error             { return nil }

func newTestRoutingTable(t *testing.T) (*RoutingTable, ring.Space, peer.Descriptor) {
	t.Helper()
	sp, err := ring.NewSpace(8, 2)
	require.NoError(t, err)
	self := peer.Descriptor{Key: sp.FromUint64(10), Addr: "self:4000"}
	local := stubPeer{d: self}
	return NewRoutingTable(self, local, sp), sp, self
}

func TestNewRoutingTableDefaultsToSelf(t *testing.T) {
	rt, _, self := newTestRoutingTable(t)
	assert.Equal(t, self.Key, rt.Successor().Descriptor().Key)
	assert.Nil(t, rt.Predecessor())
}

func TestSetAndGetSuccessor(t *testing.T) {
	rt, sp, _ := newTestRoutingTable(t)
	other := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(20), Addr: "n20:4000"}}

	rt.SetSuccessor(other)
	assert.True(t, rt.Successor().Descriptor().Key.Equal(other.d.Key))
	assert.True(t, rt.Finger(0).Descriptor().Key.Equal(other.d.Key), "finger 0 mirrors the successor")
}

func TestSetAndGetPredecessor(t *testing.T) {
	rt, sp, _ := newTestRoutingTable(t)
	assert.Nil(t, rt.Predecessor())

	other := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(5), Addr: "n5:4000"}}
	rt.SetPredecessor(other)
	assert.True(t, rt.Predecessor().Descriptor().Key.Equal(other.d.Key))
}

func TestSetSuccessorListTruncatesAndPads(t *testing.T) {
	rt, sp, _ := newTestRoutingTable(t)
	a := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(20), Addr: "a"}}
	b := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(30), Addr: "b"}}
	c := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(40), Addr: "c"}}

	rt.SetSuccessorList([]peer.Peer{a, b, c})
	list := rt.Successors()
	require.Len(t, list, 2, "space was built with SuccListSize=2")
	assert.True(t, list[0].Descriptor().Key.Equal(a.d.Key))
	assert.True(t, list[1].Descriptor().Key.Equal(b.d.Key))

	rt.SetSuccessorList([]peer.Peer{a})
	list = rt.Successors()
	require.Len(t, list, 2)
	assert.True(t, list[0].Descriptor().Key.Equal(a.d.Key))
	assert.Nil(t, list[1], "a short list is padded with nil entries")
}

func TestClosestPrecedingFingerLastMatchWins(t *testing.T) {
	// self=10 on an 8-bit ring; fingers at several points between
	// (self, target). Both finger[2] (key 40) and finger[5] (key 100)
	// lie strictly between self and target=150; the LAST one in finger
	// order (finger[5], the higher index) must win, per the Java
	// original's closest() scanning forward without an early break.
	rt, sp, self := newTestRoutingTable(t)
	target := sp.FromUint64(150)

	f2 := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(40), Addr: "f2"}}
	f5 := stubPeer{d: peer.Descriptor{Key: sp.FromUint64(100), Addr: "f5"}}
	rt.SetFinger(2, f2)
	rt.SetFinger(5, f5)

	got := rt.ClosestPrecedingFinger(target)
	assert.Equal(t, f5.d.Addr, got.Descriptor().Addr)

	_ = self
}

func TestClosestPrecedingFingerFallsBackToSelf(t *testing.T) {
	rt, _, self := newTestRoutingTable(t)
	got := rt.ClosestPrecedingFinger(self.Key)
	assert.Equal(t, self.Key, got.Descriptor().Key)
}

func TestFingerList(t *testing.T) {
	rt, sp, _ := newTestRoutingTable(t)
	rt.SetFinger(1, stubPeer{d: peer.Descriptor{Key: sp.FromUint64(15), Addr: "a"}})
	rt.SetFinger(3, stubPeer{d: peer.Descriptor{Key: sp.FromUint64(25), Addr: "b"}})

	// Finger 0 already holds the local peer from NewRoutingTable.
	fingers := rt.Fingers()
	assert.Len(t, fingers, 3)
}
