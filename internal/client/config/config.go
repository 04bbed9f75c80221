package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the edachat client.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - DatabasePath: SQLite file holding the token pair; ":memory:" keeps
//     nothing across runs.
//   - RequestTimeout: overall timeout of a single HTTP request.
//   - RefreshWindow: remaining token lifetime below which it is refreshed
//     ahead of time.
//   - HealthCheckInterval: how often the client probes /health.
//   - LogLevel: debug, info, warn or error.
//   - MetricsAddr: when set, Prometheus metrics are served on this address.
type Config struct {
	ServerBaseURL       string
	DatabasePath        string
	RequestTimeout      time.Duration
	RefreshWindow       time.Duration
	HealthCheckInterval time.Duration
	LogLevel            string
	MetricsAddr         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:5000"
	c.DatabasePath = "edachat.db"
	c.RequestTimeout = 30 * time.Second
	c.RefreshWindow = 120 * time.Second
	c.HealthCheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// Load builds a Config from defaults, then the config file named by -c,
// -config or EDACHAT_CONFIG, then the flags in args. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects durations the client cannot run with. A zero refresh
// window is allowed and means tokens are only replaced once expired.
func (c *Config) validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("health check interval must be positive, got %s", c.HealthCheckInterval)
	}
	if c.RefreshWindow < 0 {
		return fmt.Errorf("refresh window must not be negative, got %s", c.RefreshWindow)
	}
	return nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
