package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rusq/osenv/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is used when neither PORT nor the config file set a port.
	DefaultPort = 8000

	// ListenHost is the interface the server binds to.
	ListenHost = "0.0.0.0"

	// PortEnv names the environment variable that overrides the port.
	PortEnv = "PORT"
)

// Config holds server settings loaded from ~/.demoserver/config.yaml.
type Config struct {
	Port      int    `yaml:"port"`
	Root      string `yaml:"root"`
	LogLevel  string `yaml:"log_level"`
	AccessLog string `yaml:"access_log"`
	Watch     bool   `yaml:"watch"`

	// Level is LogLevel parsed by Resolve.
	Level slog.Level `yaml:"-"`
}

// DefaultPath returns the default config file path: ~/.demoserver/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".demoserver", "config.yaml")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns an empty Config and no error. An empty or all-comment file
// also returns an empty Config with no error.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies the PORT environment override and fills in defaults.
// An unparseable PORT is an error; the server must not start on a guess.
func (c *Config) Resolve() error {
	fallback := c.Port
	if fallback == 0 {
		fallback = DefaultPort
	}
	// Read as a string: osenv's int form silently falls back on a
	// malformed value.
	port, err := ParsePort(osenv.Value(PortEnv, strconv.Itoa(fallback)))
	if err != nil {
		return fmt.Errorf("resolving port: %w", err)
	}
	c.Port = port

	if c.Root == "" {
		c.Root = "."
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	c.Level = level
	return nil
}

// Addr returns the listen address on all interfaces.
func (c *Config) Addr() string {
	return net.JoinHostPort(ListenHost, strconv.Itoa(c.Port))
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", s)
	}
}

// ParsePort parses a decimal TCP port. Zero asks the kernel for a free port.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q: must be between 0 and 65535", s)
	}
	return port, nil
}
