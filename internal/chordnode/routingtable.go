// Package chordnode implements the Chord node itself: routing table,
// join/stabilization protocol, and the get/put/offer operations of
// spec.md §4. It replaces the teacher's internal/node/chord package,
// keeping its structure (a RoutingTable held by a Node, a separate
// stabilization.go driving the periodic protocol) while routing table
// entries become peer.Peer values instead of *domain.Node, so a finger
// can be satisfied locally or remotely without the rest of the code
// caring which.
package chordnode

import (
	"sync"

	"chordring/internal/peer"
	"chordring/internal/ring"
)

// RoutingTable holds a node's view of the ring: its finger table, its
// bounded successor list (spec.md §3, size R), and its predecessor.
// Every entry is a peer.Peer, so self-referencing entries are a
// peer.LocalPeer and everything else is a transport.RemotePeer, per
// spec.md §9's local/remote-handle design note.
type RoutingTable struct {
	mu sync.RWMutex

	self      peer.Descriptor
	local     peer.Peer
	space     ring.Space
	fingers   []peer.Peer
	successors []peer.Peer
	predecessor peer.Peer
}

// NewRoutingTable builds a RoutingTable for self, whose local calls are
// served by local (ordinarily a *peer.LocalPeer wrapping the Node).
func NewRoutingTable(self peer.Descriptor, local peer.Peer, space ring.Space) *RoutingTable {
	rt := &RoutingTable{
		self:       self,
		local:      local,
		space:      space,
		fingers:    make([]peer.Peer, space.Bits),
		successors: make([]peer.Peer, space.SuccListSize),
	}
	rt.successors[0] = local
	rt.fingers[0] = local
	return rt
}

// Self returns this node's own descriptor.
func (rt *RoutingTable) Self() peer.Descriptor { return rt.self }

// Space returns the identifier space this table routes over.
func (rt *RoutingTable) Space() ring.Space { return rt.space }

// Successor returns the head of the successor list, falling back to the
// local peer if that slot is empty — a node is always its own successor
// until it learns otherwise (spec.md §4.6, join). No liveness probe is
// made here; a dead head stays in place until reconcileSuccessors
// replaces it.
func (rt *RoutingTable) Successor() peer.Peer {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if len(rt.successors) > 0 && rt.successors[0] != nil {
		return rt.successors[0]
	}
	return rt.local
}

// Successors returns a copy of the full successor list, closest first.
func (rt *RoutingTable) Successors() []peer.Peer {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]peer.Peer, len(rt.successors))
	copy(out, rt.successors)
	return out
}

// SetSuccessor replaces the successor list's head. Also updates finger
// 0, which is always the immediate successor.
func (rt *RoutingTable) SetSuccessor(p peer.Peer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if len(rt.successors) == 0 {
		return
	}
	rt.successors[0] = p
	rt.fingers[0] = p
}

// SetSuccessorList atomically replaces the whole successor list,
// truncating or zero-padding to the configured size R (spec.md §4.7,
// "successor list replaced atomically").
func (rt *RoutingTable) SetSuccessorList(list []peer.Peer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n := len(rt.successors)
	for i := 0; i < n; i++ {
		if i < len(list) {
			rt.successors[i] = list[i]
		} else {
			rt.successors[i] = nil
		}
	}
	if n > 0 {
		rt.fingers[0] = rt.successors[0]
	}
}

// Predecessor returns this node's predecessor, or nil if it has none.
func (rt *RoutingTable) Predecessor() peer.Peer {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.predecessor
}

// SetPredecessor atomically assigns the predecessor pointer (spec.md §5,
// "predecessor assigned atomically").
func (rt *RoutingTable) SetPredecessor(p peer.Peer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.predecessor = p
}

// Finger returns the i-th finger table entry, or nil if unset.
func (rt *RoutingTable) Finger(i int) peer.Peer {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if i < 0 || i >= len(rt.fingers) {
		return nil
	}
	return rt.fingers[i]
}

// SetFinger assigns the i-th finger table entry.
func (rt *RoutingTable) SetFinger(i int, p peer.Peer) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if i >= 0 && i < len(rt.fingers) {
		rt.fingers[i] = p
	}
}

// Fingers returns a copy of every non-nil finger table entry.
func (rt *RoutingTable) Fingers() []peer.Peer {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]peer.Peer, 0, len(rt.fingers))
	for _, f := range rt.fingers {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// ClosestPrecedingFinger returns the finger table entry that most
// closely (but strictly) precedes id on the ring, falling back to the
// local peer when no finger qualifies.
//
// This scans the finger table forward from index 0 and keeps
// overwriting its candidate on every match, so the LAST qualifying
// finger wins — not the first one found scanning from the far end. That
// matches the Java original's PeerImpl.closest(), which the distilled
// spec's finger table is built to replicate; a reversed, first-match
// scan (as the teacher's RoutingTable.ClosestPrecedingNode does) picks a
// different, also-correct-looking candidate that can route through more
// hops on a sparsely populated table. See DESIGN.md, Open Question 2.
func (rt *RoutingTable) ClosestPrecedingFinger(id ring.ID) peer.Peer {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	var candidate peer.Peer = rt.local
	selfKey := rt.self.Key
	for _, f := range rt.fingers {
		if f == nil {
			continue
		}
		if k := f.Descriptor().Key; k.Between(selfKey, id) && !k.Equal(id) {
			candidate = f
		}
	}
	return candidate
}
