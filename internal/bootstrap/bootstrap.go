// Package bootstrap resolves the set of peers a joining node should try
// to contact, following the teacher's bootstrap.Bootstrap interface
// (Discover/Register/Deregister) in cmd/node/main.go, generalized to the
// Chord-only join path of spec.md §4.6.
package bootstrap

import "context"

// Route53Config configures DNS-based peer discovery.
type Route53Config struct {
	HostedZoneID string `yaml:"hosted_zone_id"`
	RecordName   string `yaml:"record_name"`
	TTL          int64  `yaml:"ttl_seconds"`
	Region       string `yaml:"region"`
}

// Config is the bootstrap section of the node's configuration file.
type Config struct {
	// Mode selects the Discoverer implementation: "static" or "route53".
	Mode    string        `yaml:"mode"`
	Peers   []string      `yaml:"peers"`
	Route53 Route53Config `yaml:"route53"`
}

// Discoverer resolves the addresses of candidate peers to join through,
// and registers/deregisters this node's own address with whatever
// discovery mechanism backs it. A static list has no registration work
// to do; a DNS-backed list does.
type Discoverer interface {
	// Discover returns known peer addresses. An empty, error-free result
	// means "no ring exists yet — create one" (spec.md §4.6).
	Discover(ctx context.Context) ([]string, error)

	// Register publishes self's address so future joiners can discover it.
	Register(ctx context.Context, self string) error

	// Deregister removes self's address on graceful shutdown.
	Deregister(ctx context.Context, self string) error
}

// New builds the Discoverer named by cfg.Mode.
func New(cfg Config) (Discoverer, error) {
	switch cfg.Mode {
	case "", "static":
		return NewStaticBootstrap(cfg.Peers), nil
	case "route53":
		return NewRoute53Bootstrap(cfg.Route53)
	default:
		return nil, ErrUnsupportedMode(cfg.Mode)
	}
}

// ErrUnsupportedMode reports a bootstrap.mode the Discoverer factory does
// not recognize.
type ErrUnsupportedMode string

func (e ErrUnsupportedMode) Error() string {
	return "bootstrap: unsupported mode " + string(e)
}
