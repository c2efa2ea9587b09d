package config

import (
	"os"
	"path/filepath"
	"testing"

	"chordring/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
node:
  host: ring-1.internal
  port: 5000
dht:
  id_bits: 16
  bootstrap:
    mode: static
    peers: ["ring-0.internal:5000"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ring-1.internal", cfg.Node.Host)
	assert.Equal(t, 5000, cfg.Node.Port)
	assert.Equal(t, 16, cfg.DHT.IDBits)
	assert.Equal(t, []string{"ring-0.internal:5000"}, cfg.DHT.Bootstrap.Peers)

	// Fields left unset in the YAML keep the built-in defaults.
	assert.Equal(t, 2, cfg.DHT.FaultTolerance.SuccessorListSize)
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ValidateConfig())

	cfg.Node.Port = -1
	assert.Error(t, cfg.ValidateConfig())

	cfg = Default()
	cfg.DHT.FaultTolerance.SuccessorListSize = 0
	assert.Error(t, cfg.ValidateConfig())

	cfg = Default()
	cfg.DHT.Bootstrap.Mode = "route53"
	assert.Error(t, cfg.ValidateConfig(), "route53 mode requires hosted_zone_id/record_name")

	cfg = Default()
	cfg.DHT.Bootstrap.Mode = "carrier-pigeon"
	assert.Error(t, cfg.ValidateConfig())
}

func TestLogConfigDoesNotPanic(t *testing.T) {
	cfg := Default()
	cfg.LogConfig(logger.NopLogger{})
}
