package chordnode

import (
	"context"
	"fmt"
	"sync"

	"chordring/internal/liveness"
	"chordring/internal/logger"
	"chordring/internal/peer"
	"chordring/internal/ring"
	"chordring/internal/store"
)

// Node is a single Chord participant: routing table, local store, and
// the operations of spec.md §4.6–§4.8. It implements peer.Peer directly
// so that a *Node can be wrapped in a peer.LocalPeer and handed to its
// own finger table and successor list, and so transport can register it
// straight onto a grpc.Server (transport.RegisterServer(s, node)).
type Node struct {
	lgr    logger.Logger
	space  ring.Space
	rt     *RoutingTable
	store  store.Store
	pool   *pool
	prober *liveness.Prober

	mu    sync.RWMutex
	state State
}

// Option configures a Node at construction time, mirroring the
// teacher's functional-options pattern (chord.WithLogger,
// chord.WithRoutingTable).
type Option func(*Node)

// WithLogger attaches a structured logger.
func WithLogger(lgr logger.Logger) Option {
	return func(n *Node) { n.lgr = lgr }
}

// WithLiveness overrides the default liveness prober (spec.md §6,
// T_live).
func WithLiveness(p *liveness.Prober) Option {
	return func(n *Node) { n.prober = p }
}

// New builds a Node for self, using dial to reach every other peer and
// st as its local key/value store.
func New(self peer.Descriptor, space ring.Space, st store.Store, dial Dialer, opts ...Option) *Node {
	n := &Node{
		lgr:    logger.NopLogger{},
		space:  space,
		store:  st,
		pool:   newPool(dial),
		prober: liveness.New(liveness.DefaultTimeout),
		state:  Unjoined,
	}
	for _, opt := range opts {
		opt(n)
	}
	local := peer.NewLocalPeer(n)
	n.rt = NewRoutingTable(self, local, space)
	return n
}

// RoutingTable exposes the node's table, mainly for the REPL's
// "successor"/"key" commands and tests.
func (n *Node) RoutingTable() *RoutingTable { return n.rt }

// State reports the node's current lifecycle stage.
func (n *Node) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

func (n *Node) setState(s State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
}

// --- peer.Peer -------------------------------------------------------

func (n *Node) Descriptor() peer.Descriptor { return n.rt.Self() }

func (n *Node) Key(ctx context.Context) (ring.ID, error) {
	return n.rt.Self().Key, nil
}

func (n *Node) Successor(ctx context.Context) (peer.Descriptor, error) {
	return n.rt.Successor().Descriptor(), nil
}

func (n *Node) Successors(ctx context.Context) ([]peer.Descriptor, error) {
	list := n.rt.Successors()
	out := make([]peer.Descriptor, 0, len(list))
	for _, p := range list {
		if p != nil {
			out = append(out, p.Descriptor())
		}
	}
	return out, nil
}

func (n *Node) Predecessor(ctx context.Context) (peer.Descriptor, error) {
	p := n.rt.Predecessor()
	if p == nil {
		return peer.Descriptor{}, nil
	}
	return p.Descriptor(), nil
}

// FindSuccessor resolves id's successor, recursively forwarding to the
// closest preceding finger when id doesn't fall in this node's own
// (self, successor] arc — spec.md §4.5.
func (n *Node) FindSuccessor(ctx context.Context, id ring.ID) (peer.Descriptor, error) {
	self := n.rt.Self()
	succ := n.rt.Successor()
	succDesc := succ.Descriptor()

	if id.Between(self.Key, succDesc.Key) || id.Equal(succDesc.Key) {
		return succDesc, nil
	}

	closest := n.rt.ClosestPrecedingFinger(id)
	if closest.Descriptor().Key.Equal(self.Key) {
		closest = succ
	}
	if closest.Descriptor().Key.Equal(self.Key) {
		// Ring of one: self is its own successor for every key.
		return self, nil
	}
	return closest.FindSuccessor(ctx, id)
}

// Notify is called by a peer that believes it might be our predecessor
// (spec.md §4.6). If it is, we adopt it and hand off any keys we are
// holding that now belong to it instead of us.
func (n *Node) Notify(ctx context.Context, candidate peer.Descriptor) error {
	self := n.rt.Self()
	if candidate.Key.Equal(self.Key) {
		return nil
	}

	pred := n.rt.Predecessor()
	shouldAdopt := pred == nil || candidate.Key.Between(pred.Descriptor().Key, self.Key)
	if !shouldAdopt {
		return nil
	}

	candPeer, err := n.peerFor(ctx, candidate)
	if err != nil {
		return fmt.Errorf("notify: resolving candidate %s: %w", candidate.Addr, err)
	}

	var oldPredKey ring.ID
	if pred != nil {
		oldPredKey = pred.Descriptor().Key
	} else {
		oldPredKey = self.Key // no previous predecessor: hand off (self, candidate]
	}

	n.rt.SetPredecessor(candPeer)
	n.lgr.Info("notify: adopted predecessor",
		logger.FNode("candidate", candidate.Key, candidate.Addr))

	n.handOff(ctx, oldPredKey, candidate.Key, candPeer)
	return nil
}

// handOff pushes every locally stored item whose key falls in
// (oldPredKey, newPredKey] to newPred, since that arc now belongs to the
// new predecessor rather than to us (spec.md §4.6, §9 "Store iteration
// during handoff": snapshot the matching keys first, then iterate and
// push — never mutate the store while ranging over it).
func (n *Node) handOff(ctx context.Context, oldPredKey, newPredKey ring.ID, newPred peer.Peer) {
	items := n.store.Items(oldPredKey, newPredKey)
	if len(items) == 0 {
		return
	}
	kv := make([]peer.KV, len(items))
	for i, it := range items {
		kv[i] = peer.KV{Key: it.Key, Value: it.Value}
	}
	if err := newPred.Offer(ctx, kv); err != nil {
		n.lgr.Warn("handoff: offer failed", logger.F("err", err), logger.F("count", len(kv)))
		return
	}
	for _, it := range items {
		n.store.Delete(it.Key)
	}
	n.lgr.Debug("handoff: transferred keys", logger.F("count", len(kv)))
}

func (n *Node) Get(ctx context.Context, key ring.ID) ([]byte, bool, error) {
	owner, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if owner.Key.Equal(n.rt.Self().Key) {
		v, ok := n.store.Get(key)
		return v, ok, nil
	}
	p, err := n.peerFor(ctx, owner)
	if err != nil {
		return nil, false, err
	}
	return p.Get(ctx, key)
}

// Put stores value under key on whichever node is currently responsible
// for it, returning the value previously bound there, if any (spec.md
// §4.8: "put returns the previously bound value (or null)").
func (n *Node) Put(ctx context.Context, key ring.ID, value []byte) ([]byte, error) {
	owner, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return nil, err
	}
	if owner.Key.Equal(n.rt.Self().Key) {
		old, _ := n.store.Put(key, value)
		return old, nil
	}
	p, err := n.peerFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	return p.Put(ctx, key, value)
}

// Offer accepts a batch of handed-off (key, value) pairs, inserting each
// one only if not already present — spec.md §4.7: "insert (k,v) into
// data only if k is not already present, preserving any existing
// value." Idempotent: offering the same item twice never overwrites the
// value the first offer installed (spec.md §7, testable property P6).
func (n *Node) Offer(ctx context.Context, items []peer.KV) error {
	for _, it := range items {
		n.store.PutIfAbsent(it.Key, it.Value)
	}
	return nil
}

// --- lifecycle ---------------------------------------------------------

// CreateNewDHT initializes a fresh, single-node ring: self is its own
// successor and has no predecessor (spec.md §4.6).
func (n *Node) CreateNewDHT() {
	self := n.rt.Self()
	n.rt.SetSuccessorList([]peer.Peer{peer.NewLocalPeer(n)})
	n.rt.SetPredecessor(nil)
	n.setState(Joined)
	n.lgr.Info("initialized new ring", logger.FNode("self", self.Key, self.Addr))
}

// Join contacts each candidate bootstrap address in turn until one of
// them resolves this node's own successor, per spec.md §4.6.
func (n *Node) Join(ctx context.Context, addrs []string) error {
	n.setState(Bootstrapping)
	self := n.rt.Self()

	var lastErr error
	for _, addr := range addrs {
		if addr == self.Addr {
			continue
		}
		entry, err := n.pool.get(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}
		succDesc, err := entry.FindSuccessor(ctx, self.Key)
		if err != nil {
			lastErr = err
			continue
		}
		if succDesc.Key.Equal(self.Key) {
			n.setState(Unjoined)
			return fmt.Errorf("join: a node with this key already exists at %s", succDesc.Addr)
		}

		succPeer, err := n.peerFor(ctx, succDesc)
		if err != nil {
			lastErr = err
			continue
		}
		n.rt.SetSuccessor(succPeer)
		n.setState(Joined)
		n.lgr.Info("join: resolved successor",
			logger.F("bootstrap", addr),
			logger.FNode("successor", succDesc.Key, succDesc.Addr))
		return nil
	}

	n.setState(Unjoined)
	if lastErr != nil {
		return fmt.Errorf("join: all bootstrap attempts failed: %w", lastErr)
	}
	return fmt.Errorf("join: no usable bootstrap peers given")
}

// Stop releases every cached connection. There is no explicit leave
// protocol (spec.md §1 Non-goals): a node that stops simply stops
// answering, and its neighbors discover that through checkPredecessor/
// reconcileSuccessors' ordinary timeout-based liveness probing, the same
// path a crashed node is detected through.
func (n *Node) Stop() {
	n.pool.closeAll()
}

// peerFor resolves a Descriptor to a live peer.Peer, short-circuiting to
// the local handle when it names this node.
func (n *Node) peerFor(ctx context.Context, d peer.Descriptor) (peer.Peer, error) {
	if d.Key.Equal(n.rt.Self().Key) {
		return peer.NewLocalPeer(n), nil
	}
	return n.pool.get(ctx, d.Addr)
}
