// Package health checks a running demoserver, for use as a container
// HEALTHCHECK.
package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// DefaultTimeout bounds a check when Config.Timeout is unset.
const DefaultTimeout = 2 * time.Second

// Config holds health check configuration.
type Config struct {
	Type    string        // "http" | "tcp"
	Host    string        // defaults to 127.0.0.1
	Port    int           // http and tcp
	Path    string        // http only, defaults to "/"
	Timeout time.Duration // max time per check
}

func (c Config) addr() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// SingleCheck runs one check with the given config and returns nil if healthy.
func SingleCheck(cfg Config) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	switch cfg.Type {
	case "", "http":
		return checkHTTP(ctx, cfg)
	case "tcp":
		return checkTCP(ctx, cfg)
	default:
		return fmt.Errorf("unknown health check type: %s", cfg.Type)
	}
}

func checkHTTP(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = "/"
	}
	url := "http://" + cfg.addr() + path
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	client := &http.Client{Timeout: cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
	}
	return nil
}

func checkTCP(ctx context.Context, cfg Config) error {
	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.addr())
	if err != nil {
		return fmt.Errorf("tcp connect failed: %w", err)
	}
	conn.Close()
	return nil
}
