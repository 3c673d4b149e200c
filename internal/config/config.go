// Package config resolves the immutable server configuration from the
// minimal key=value source, the optional extended YAML source, and
// command-line overrides.
//
// Precedence, lowest to highest: defaults, minimal source, extended
// source, command-line flags. The resolved ServerConfig is built once
// before any socket opens and never mutated afterward.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirroring the historical server behavior.
const (
	DefaultPort        = 44445
	DefaultMaxWorkers  = 4096
	DefaultReadTimeout = 50 * time.Millisecond

	// portProbeRange is how many ports above DefaultPort are tried when no
	// port is configured.
	portProbeRange = 10
)

// ErrMissingCorpusPath is returned when no corpus path was resolved from
// any source. This is a fatal startup condition.
var ErrMissingCorpusPath = errors.New("config: linuxpath (corpus path) is required")

// ErrNoAvailablePort is returned when port probing finds no free port.
var ErrNoAvailablePort = errors.New("config: no available port found")

// Duration is a time.Duration that unmarshals from YAML strings like
// "50ms". yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// ServerConfig is the immutable configuration shared read-only by every
// component after startup.
type ServerConfig struct {
	Port          int    `yaml:"port"`
	SSLEnabled    bool   `yaml:"ssl"`
	RereadOnQuery bool   `yaml:"reread_on_query"`
	CorpusPath    string `yaml:"linuxpath"`
	CertFile      string `yaml:"certfile"`
	KeyFile       string `yaml:"keyfile"`
	Algorithm     string `yaml:"algorithm"`

	// WatchCorpus enables watch-driven corpus refresh. Only meaningful when
	// RereadOnQuery is false; reread-per-query already guarantees freshness.
	WatchCorpus bool `yaml:"watch_corpus"`

	// MaxWorkers caps the number of concurrently served connections.
	MaxWorkers int `yaml:"max_workers"`

	// ReadTimeout bounds the single read of the client query.
	ReadTimeout Duration `yaml:"read_timeout"`

	// AcceptRate throttles the accept loop in connections per second.
	// Zero disables throttling.
	AcceptRate float64 `yaml:"accept_rate"`
}

// Overrides carries command-line flag values. Only fields whose Set flag is
// true take effect, so an unset flag never clobbers a file-sourced value.
type Overrides struct {
	Port             int
	PortSet          bool
	SSLEnabled       bool
	SSLEnabledSet    bool
	RereadOnQuery    bool
	RereadOnQuerySet bool
	CertFile         string
	KeyFile          string
	Algorithm        string
	WatchCorpus      bool
	WatchCorpusSet   bool
}

// Default returns a ServerConfig populated with defaults. Port is left at
// zero so that Resolve can tell "unset" from "configured".
func Default() *ServerConfig {
	return &ServerConfig{
		Algorithm:   "linear",
		MaxWorkers:  DefaultMaxWorkers,
		ReadTimeout: Duration(DefaultReadTimeout),
	}
}

// LoadMinimal parses the line-oriented key=value source. Unknown keys are
// ignored; recognized keys overwrite the corresponding cfg fields.
func LoadMinimal(path string, cfg *ServerConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "linuxpath":
			cfg.CorpusPath = value
		case "REREAD_ON_QUERY":
			cfg.RereadOnQuery = parseBool(value)
		case "SSL_ENABLED":
			cfg.SSLEnabled = parseBool(value)
		case "CERT_FILE":
			cfg.CertFile = value
		case "KEY_FILE":
			cfg.KeyFile = value
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// LoadExtended parses the YAML extended source into cfg. Fields absent from
// the document keep their current values.
func LoadExtended(path string, cfg *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open server config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse server config %s: %w", path, err)
	}
	return nil
}

// Apply overlays command-line overrides onto cfg.
func (c *ServerConfig) Apply(o Overrides) {
	if o.PortSet {
		c.Port = o.Port
	}
	if o.SSLEnabledSet {
		c.SSLEnabled = o.SSLEnabled
	}
	if o.RereadOnQuerySet {
		c.RereadOnQuery = o.RereadOnQuery
	}
	if o.CertFile != "" {
		c.CertFile = o.CertFile
	}
	if o.KeyFile != "" {
		c.KeyFile = o.KeyFile
	}
	if o.Algorithm != "" {
		c.Algorithm = o.Algorithm
	}
	if o.WatchCorpusSet {
		c.WatchCorpus = o.WatchCorpus
	}
}

// Validate checks the fatal startup conditions that can be decided without
// touching the network: a corpus path must be present, and TLS needs both
// certificate and key.
func (c *ServerConfig) Validate() error {
	if c.CorpusPath == "" {
		return ErrMissingCorpusPath
	}
	if c.SSLEnabled && (c.CertFile == "" || c.KeyFile == "") {
		return errors.New("config: ssl enabled but certfile or keyfile missing")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("config: max_workers must be positive, got %d", c.MaxWorkers)
	}
	return nil
}

// Resolve builds the final ServerConfig from the given sources. minimalPath
// is mandatory; extendedPath may be empty. When no port was configured by
// any source, the first free port in [DefaultPort, DefaultPort+10) is
// chosen, matching the historical launcher.
func Resolve(minimalPath, extendedPath string, o Overrides, logger *slog.Logger) (*ServerConfig, error) {
	cfg := Default()

	if err := LoadMinimal(minimalPath, cfg); err != nil {
		return nil, err
	}
	logger.Info("config loaded", slog.String("path", minimalPath))

	if extendedPath != "" {
		if err := LoadExtended(extendedPath, cfg); err != nil {
			return nil, err
		}
		logger.Info("extended server config loaded", slog.String("path", extendedPath))
	}

	cfg.Apply(o)

	if cfg.Port == 0 {
		port, err := findAvailablePort(DefaultPort, portProbeRange)
		if err != nil {
			return nil, err
		}
		cfg.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// findAvailablePort returns the first port in [start, start+count) that can
// be bound on localhost.
func findAvailablePort(start, count int) (int, error) {
	for port := start; port < start+count; port++ {
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err != nil {
			continue
		}
		_ = l.Close()
		return port, nil
	}
	return 0, ErrNoAvailablePort
}
