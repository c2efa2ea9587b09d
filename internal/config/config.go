// Package config loads and validates the YAML configuration file that
// drives cmd/node, following the shape of the teacher's config.LoadConfig
// / ValidateConfig / LogConfig trio (cmd/node/main.go).
package config

import (
	"fmt"
	"os"
	"time"

	"chordring/internal/bootstrap"
	"chordring/internal/logger"
	zapfactory "chordring/internal/logger/zap"
	"chordring/internal/telemetry"

	"gopkg.in/yaml.v3"
)

// Node is this process's own address configuration.
type Node struct {
	Bind string `yaml:"bind"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Id overrides the derived key, mainly for tests and demos; left
	// empty, the key is hash(host:port) per spec.md §3.
	Id string `yaml:"id"`
}

// FaultTolerance holds the liveness/replication tunables of spec.md §6.
type FaultTolerance struct {
	SuccessorListSize        int           `yaml:"successor_list_size"`
	FailureTimeout           time.Duration `yaml:"failure_timeout"`
	StabilizationInterval    time.Duration `yaml:"stabilization_interval"`
	FixFingersInterval       time.Duration `yaml:"fix_fingers_interval"`
	CheckPredecessorInterval time.Duration `yaml:"check_predecessor_interval"`
}

// DHT holds the protocol-level configuration.
type DHT struct {
	IDBits         int              `yaml:"id_bits"`
	FaultTolerance FaultTolerance   `yaml:"fault_tolerance"`
	Bootstrap      bootstrap.Config `yaml:"bootstrap"`
}

// Config is the root of config/node/config.yaml.
type Config struct {
	Node      Node              `yaml:"node"`
	DHT       DHT               `yaml:"dht"`
	Logger    zapfactory.Config `yaml:"logger"`
	Telemetry telemetry.Config  `yaml:"telemetry"`
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return cfg, nil
}

// Default returns a Config populated with the tunable defaults of
// spec.md §6: m=32, T_stab=4000ms, R=2, T_live=500ms.
func Default() *Config {
	return &Config{
		Node: Node{
			Bind: "0.0.0.0",
			Host: "localhost",
			Port: 4000,
		},
		DHT: DHT{
			IDBits: 32,
			FaultTolerance: FaultTolerance{
				SuccessorListSize:        2,
				FailureTimeout:           500 * time.Millisecond,
				StabilizationInterval:    4000 * time.Millisecond,
				FixFingersInterval:       1000 * time.Millisecond,
				CheckPredecessorInterval: 4000 * time.Millisecond,
			},
			Bootstrap: bootstrap.Config{
				Mode: "static",
			},
		},
		Logger: zapfactory.Config{
			Active: true,
			Level:  "info",
		},
	}
}

// ValidateConfig rejects configurations that would leave the node in an
// inconsistent or unsafe state.
func (c *Config) ValidateConfig() error {
	if c.Node.Port < 0 || c.Node.Port > 65535 {
		return fmt.Errorf("config: node.port %d out of range", c.Node.Port)
	}
	if c.DHT.IDBits <= 0 || c.DHT.IDBits > 512 {
		return fmt.Errorf("config: dht.id_bits %d out of supported range", c.DHT.IDBits)
	}
	if c.DHT.FaultTolerance.SuccessorListSize < 1 {
		return fmt.Errorf("config: dht.fault_tolerance.successor_list_size must be >= 1")
	}
	if c.DHT.FaultTolerance.FailureTimeout <= 0 {
		return fmt.Errorf("config: dht.fault_tolerance.failure_timeout must be positive")
	}
	if c.DHT.FaultTolerance.StabilizationInterval <= 0 {
		return fmt.Errorf("config: dht.fault_tolerance.stabilization_interval must be positive")
	}
	switch c.DHT.Bootstrap.Mode {
	case "static":
		// an empty peer list is valid: it means "create a new ring"
	case "route53":
		if c.DHT.Bootstrap.Route53.HostedZoneID == "" || c.DHT.Bootstrap.Route53.RecordName == "" {
			return fmt.Errorf("config: dht.bootstrap.route53 requires hosted_zone_id and record_name")
		}
	default:
		return fmt.Errorf("config: unsupported dht.bootstrap.mode %q", c.DHT.Bootstrap.Mode)
	}
	return nil
}

// LogConfig emits the resolved configuration at debug level, mirroring
// the teacher's cfg.LogConfig(lgr) call in cmd/node/main.go.
func (c *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("configuration loaded",
		logger.F("bind", c.Node.Bind),
		logger.F("host", c.Node.Host),
		logger.F("port", c.Node.Port),
		logger.F("id_bits", c.DHT.IDBits),
		logger.F("successor_list_size", c.DHT.FaultTolerance.SuccessorListSize),
		logger.F("failure_timeout", c.DHT.FaultTolerance.FailureTimeout.String()),
		logger.F("stabilization_interval", c.DHT.FaultTolerance.StabilizationInterval.String()),
		logger.F("bootstrap_mode", c.DHT.Bootstrap.Mode),
		logger.F("tracing_enabled", c.Telemetry.Enabled),
	)
}
