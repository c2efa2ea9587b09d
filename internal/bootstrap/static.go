package bootstrap

import "context"

// StaticBootstrap resolves peers from a fixed, config-supplied address
// list — the spec-mandated known-host join of spec.md §4.6. Register
// and Deregister are no-ops: there is nowhere to publish to.
type StaticBootstrap struct {
	peers []string
}

// NewStaticBootstrap builds a Discoverer over a fixed peer list.
func NewStaticBootstrap(peers []string) *StaticBootstrap {
	cp := make([]string, len(peers))
	copy(cp, peers)
	return &StaticBootstrap{peers: cp}
}

func (s *StaticBootstrap) Discover(ctx context.Context) ([]string, error) {
	return s.peers, nil
}

func (s *StaticBootstrap) Register(ctx context.Context, self string) error {
	return nil
}

func (s *StaticBootstrap) Deregister(ctx context.Context, self string) error {
	return nil
}
