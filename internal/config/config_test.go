package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haystackd/haystackd/internal/logging"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMinimal(t *testing.T) {
	path := writeConfig(t, "config.txt", `# server config
linuxpath=/data/corpus.txt
REREAD_ON_QUERY=True
SSL_ENABLED=false
CERT_FILE=/etc/ssl/server.crt
KEY_FILE=/etc/ssl/server.key
ignored garbage line
`)

	cfg := Default()
	require.NoError(t, LoadMinimal(path, cfg))

	assert.Equal(t, "/data/corpus.txt", cfg.CorpusPath)
	assert.True(t, cfg.RereadOnQuery)
	assert.False(t, cfg.SSLEnabled)
	assert.Equal(t, "/etc/ssl/server.crt", cfg.CertFile)
	assert.Equal(t, "/etc/ssl/server.key", cfg.KeyFile)
}

func TestLoadMinimalMissingFile(t *testing.T) {
	err := LoadMinimal(filepath.Join(t.TempDir(), "nope.txt"), Default())
	require.Error(t, err)
}

func TestLoadExtended(t *testing.T) {
	path := writeConfig(t, "server.yaml", `
port: 55555
ssl: true
reread_on_query: true
linuxpath: /data/other.txt
certfile: /tls/crt
keyfile: /tls/key
algorithm: set
max_workers: 128
read_timeout: 100ms
`)

	cfg := Default()
	require.NoError(t, LoadExtended(path, cfg))

	assert.Equal(t, 55555, cfg.Port)
	assert.True(t, cfg.SSLEnabled)
	assert.True(t, cfg.RereadOnQuery)
	assert.Equal(t, "/data/other.txt", cfg.CorpusPath)
	assert.Equal(t, "set", cfg.Algorithm)
	assert.Equal(t, 128, cfg.MaxWorkers)
	assert.Equal(t, Duration(100*time.Millisecond), cfg.ReadTimeout)
}

func TestLoadExtendedKeepsUnsetFields(t *testing.T) {
	path := writeConfig(t, "server.yaml", "port: 50000\n")

	cfg := Default()
	cfg.CorpusPath = "/data/corpus.txt"
	require.NoError(t, LoadExtended(path, cfg))

	assert.Equal(t, 50000, cfg.Port)
	assert.Equal(t, "/data/corpus.txt", cfg.CorpusPath)
	assert.Equal(t, DefaultMaxWorkers, cfg.MaxWorkers)
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.CorpusPath = "/data/corpus.txt"
	cfg.Port = 50000
	cfg.RereadOnQuery = true

	cfg.Apply(Overrides{
		Port:      60000,
		PortSet:   true,
		Algorithm: "rabinkarp",
	})

	assert.Equal(t, 60000, cfg.Port)
	assert.Equal(t, "rabinkarp", cfg.Algorithm)
	// RereadOnQuerySet was false, so the file-sourced value survives.
	assert.True(t, cfg.RereadOnQuery)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingCorpusPath)

	cfg.CorpusPath = "/data/corpus.txt"
	require.NoError(t, cfg.Validate())

	cfg.SSLEnabled = true
	require.Error(t, cfg.Validate())

	cfg.CertFile = "/tls/crt"
	cfg.KeyFile = "/tls/key"
	require.NoError(t, cfg.Validate())

	cfg.MaxWorkers = 0
	require.Error(t, cfg.Validate())
}

func TestResolvePrecedence(t *testing.T) {
	minimal := writeConfig(t, "config.txt", "linuxpath=/from/minimal.txt\nREREAD_ON_QUERY=true\n")
	extended := writeConfig(t, "server.yaml", "linuxpath: /from/extended.txt\nport: 50001\n")

	cfg, err := Resolve(minimal, extended, Overrides{Algorithm: "set"}, logging.Discard())
	require.NoError(t, err)

	// Extended overrides minimal, flags override extended.
	assert.Equal(t, "/from/extended.txt", cfg.CorpusPath)
	assert.Equal(t, 50001, cfg.Port)
	assert.Equal(t, "set", cfg.Algorithm)
	assert.True(t, cfg.RereadOnQuery)
}

func TestResolveMissingCorpusPathIsFatal(t *testing.T) {
	minimal := writeConfig(t, "config.txt", "REREAD_ON_QUERY=false\n")

	_, err := Resolve(minimal, "", Overrides{}, logging.Discard())
	require.ErrorIs(t, err, ErrMissingCorpusPath)
}

func TestResolveProbesPortWhenUnset(t *testing.T) {
	minimal := writeConfig(t, "config.txt", "linuxpath=/data/corpus.txt\n")

	cfg, err := Resolve(minimal, "", Overrides{}, logging.Discard())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cfg.Port, DefaultPort)
	assert.Less(t, cfg.Port, DefaultPort+portProbeRange)
}
