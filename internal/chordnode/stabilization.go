package chordnode

import (
	"context"
	"time"

	"chordring/internal/logger"
	"chordring/internal/peer"
	"chordring/internal/schedule"
)

// StabilizationConfig carries the three periodic intervals spec.md §6
// tunes independently: T_stab for stabilize, a fix-fingers cadence, and
// a check-predecessor cadence — generalizing the teacher's fixed
// 100ms/5s constants into configuration.
type StabilizationConfig struct {
	StabilizeInterval        time.Duration
	FixFingersInterval       time.Duration
	CheckPredecessorInterval time.Duration
}

// StartStabilizers launches the three background loops of spec.md §4.7
// and blocks until ctx is canceled, mirroring the teacher's
// StartStabilizers but driven by the shared schedule.Group runner.
func (n *Node) StartStabilizers(ctx context.Context, cfg StabilizationConfig) {
	nextFinger := 0
	group := schedule.NewGroup(n.lgr)
	group.Start(ctx,
		schedule.Entry{
			Name:     "stabilize",
			Interval: cfg.StabilizeInterval,
			Task: func(ctx context.Context) error {
				n.stabilize(ctx)
				return nil
			},
		},
		schedule.Entry{
			Name:     "fix-fingers",
			Interval: cfg.FixFingersInterval,
			Task: func(ctx context.Context) error {
				n.fixFinger(ctx, nextFinger)
				nextFinger = (nextFinger + 1) % n.space.Bits
				return nil
			},
		},
		schedule.Entry{
			Name:     "check-predecessor",
			Interval: cfg.CheckPredecessorInterval,
			Task: func(ctx context.Context) error {
				n.checkPredecessor(ctx)
				return nil
			},
		},
	)
}

// stabilize runs one stabilization round (spec.md §4.7): ask the
// successor for its predecessor, adopt it as our own successor if it
// lies strictly between us and our current successor, notify the
// (possibly new) successor of ourselves, refresh our whole successor
// list from theirs, then run handoffSweep. Fingers are refreshed by the
// separate fix-fingers loop, not here.
func (n *Node) stabilize(ctx context.Context) {
	self := n.rt.Self()
	succ := n.rt.Successor()
	succDesc := succ.Descriptor()

	ctx, cancel := context.WithTimeout(ctx, n.prober.Timeout)
	x, err := succ.Predecessor(ctx)
	cancel()
	if err != nil {
		n.lgr.Warn("stabilize: get-predecessor failed", logger.F("err", err))
		n.reconcileSuccessors(context.Background())
		return
	}

	if x.Addr != "" && x.Key.Between(self.Key, succDesc.Key) {
		xPeer, err := n.peerFor(context.Background(), x)
		if err == nil {
			n.rt.SetSuccessor(xPeer)
			succ = xPeer
			succDesc = x
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), n.prober.Timeout)
	err = succ.Notify(ctx, self)
	cancel()
	if err != nil {
		n.lgr.Warn("stabilize: notify failed", logger.F("err", err), logger.FNode("successor", succDesc.Key, succDesc.Addr))
		n.reconcileSuccessors(context.Background())
		return
	}

	ctx, cancel = context.WithTimeout(context.Background(), n.prober.Timeout)
	succList, err := succ.Successors(ctx)
	cancel()
	if err != nil {
		n.lgr.Warn("stabilize: get-successors failed", logger.F("err", err))
		return
	}

	newList := make([]peer.Peer, 0, n.space.SuccListSize)
	newList = append(newList, succ)
	for _, d := range succList {
		if len(newList) >= n.space.SuccListSize {
			break
		}
		if d.Key.Equal(self.Key) {
			continue
		}
		p, err := n.peerFor(context.Background(), d)
		if err != nil {
			continue
		}
		newList = append(newList, p)
	}
	n.rt.SetSuccessorList(newList)
	n.handoffSweep(context.Background())
}

// handoffSweep is stabilize's fourth step (spec.md §4.7 step 4): for
// every key this node currently stores, if that key's successor is no
// longer us, remove it locally and offer it to whoever is now
// responsible. This is the generic self-healing pass — distinct from
// the boundary-shift handoff Notify triggers reactively when a new
// predecessor is adopted — that catches any entry drifting out of our
// range for other reasons (e.g. a transient mis-routed Put/Offer).
func (n *Node) handoffSweep(ctx context.Context) {
	self := n.rt.Self()
	for _, key := range n.store.Keys() {
		lookupCtx, cancel := context.WithTimeout(ctx, n.prober.Timeout)
		owner, err := n.FindSuccessor(lookupCtx, key)
		cancel()
		if err != nil {
			n.lgr.Warn("handoff-sweep: lookup failed", logger.F("err", err))
			continue
		}
		if owner.Key.Equal(self.Key) {
			continue
		}
		value, ok := n.store.Get(key)
		if !ok {
			continue
		}
		p, err := n.peerFor(ctx, owner)
		if err != nil {
			n.lgr.Warn("handoff-sweep: resolving owner failed", logger.F("err", err))
			continue
		}
		offerCtx, cancel := context.WithTimeout(ctx, n.prober.Timeout)
		err = p.Offer(offerCtx, []peer.KV{{Key: key, Value: value}})
		cancel()
		if err != nil {
			n.lgr.Warn("handoff-sweep: offer failed", logger.F("err", err))
			continue
		}
		n.store.Delete(key)
	}
}

// reconcileSuccessors drops a dead successor and promotes the next live
// entry in the successor list to take its place (spec.md §4.3/§4.7).
func (n *Node) reconcileSuccessors(ctx context.Context) {
	list := n.rt.Successors()
	for i, p := range list {
		if p == nil {
			continue
		}
		if n.prober.IsAlive(ctx, p) {
			if i > 0 {
				n.rt.SetSuccessorList(list[i:])
				n.lgr.Warn("reconcile: promoted successor after failure",
					logger.F("promoted_index", i))
			}
			return
		}
		if d := p.Descriptor(); d.Addr != "" {
			n.pool.drop(d.Addr)
		}
	}
	// Every known successor is dead: fall back to ourselves, the Chord
	// worst case for a ring that has otherwise lost connectivity.
	n.rt.SetSuccessorList([]peer.Peer{peer.NewLocalPeer(n)})
	n.lgr.Error("reconcile: entire successor list unreachable, falling back to self")
}

// fixFinger refreshes one finger table entry, round-robining across all
// m entries over successive calls (spec.md §4.7).
func (n *Node) fixFinger(ctx context.Context, i int) {
	self := n.rt.Self()
	target := n.space.Shift(self.Key, i)

	ctx, cancel := context.WithTimeout(ctx, n.prober.Timeout)
	defer cancel()

	succDesc, err := n.FindSuccessor(ctx, target)
	if err != nil {
		n.lgr.Debug("fix-fingers: lookup failed", logger.F("index", i), logger.F("err", err))
		return
	}
	p, err := n.peerFor(ctx, succDesc)
	if err != nil {
		return
	}
	n.rt.SetFinger(i, p)
}

// checkPredecessor clears the predecessor pointer if it has stopped
// responding (spec.md §4.3).
func (n *Node) checkPredecessor(ctx context.Context) {
	pred := n.rt.Predecessor()
	if pred == nil {
		return
	}
	if !n.prober.IsAlive(ctx, pred) {
		if d := pred.Descriptor(); d.Addr != "" {
			n.pool.drop(d.Addr)
		}
		n.rt.SetPredecessor(nil)
		n.lgr.Warn("check-predecessor: predecessor unreachable, cleared")
	}
}
