// Package peer defines the Peer interface that the rest of the node
// programs against — a single vocabulary of Chord operations that is
// satisfied both by an in-process node (LocalPeer) and by a remote one
// reached over the network (transport.RemotePeer), per spec.md §9's
// design note: "hide whether a peer is local or remote behind a common
// interface."
package peer

import (
	"context"

	"chordring/internal/ring"
)

// Descriptor identifies a peer by its key and dial address, the minimal
// information carried across the wire and stored in finger/successor
// entries.
type Descriptor struct {
	Key  ring.ID
	Addr string
}

// Peer is everything a Chord node can ask another node (local or remote)
// to do, per spec.md §4 and §6 (wire protocol operations: key,
// successor, successors, predecessor, findSuccessor, notify, get, put,
// offer).
type Peer interface {
	// Descriptor returns this peer's key and address without a round
	// trip — for a RemotePeer this is cached from the handshake, for a
	// LocalPeer it's read straight off the node.
	Descriptor() Descriptor

	// Key returns the peer's identifier (spec.md §6, operation "key").
	Key(ctx context.Context) (ring.ID, error)

	// Successor returns the peer's immediate successor.
	Successor(ctx context.Context) (Descriptor, error)

	// Successors returns the peer's whole successor list, closest first.
	Successors(ctx context.Context) ([]Descriptor, error)

	// Predecessor returns the peer's predecessor, or a zero Descriptor
	// (Addr == "") if it has none.
	Predecessor(ctx context.Context) (Descriptor, error)

	// FindSuccessor asks the peer to resolve id's successor, routing
	// further around the ring as needed (spec.md §4.5).
	FindSuccessor(ctx context.Context, id ring.ID) (Descriptor, error)

	// Notify tells the peer "I believe I might be your predecessor"
	// (spec.md §4.6).
	Notify(ctx context.Context, candidate Descriptor) error

	// Get retrieves the value stored under key, if any.
	Get(ctx context.Context, key ring.ID) (value []byte, found bool, err error)

	// Put stores value under key on the peer responsible for it, returning
	// the previously bound value if any (spec.md §4.8: "put returns the
	// previously bound value (or null)").
	Put(ctx context.Context, key ring.ID, value []byte) (old []byte, err error)

	// Offer hands a batch of (key, value) pairs to the peer during a
	// handoff; idempotent on the receiving side (spec.md §4.7, §7).
	Offer(ctx context.Context, items []KV) error
}

// KV is a single key/value pair, used by Offer during handoff.
type KV struct {
	Key   ring.ID
	Value []byte
}
