package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dmitrijs2005/edachat/internal/flagx"
	"github.com/dmitrijs2005/edachat/internal/timex"
)

// FileConfig is a DTO used for config file decoding. It relies on
// timex.Duration so intervals can be written as strings like "3s" (JSON and
// TOML) or integer nanoseconds (JSON only). Zero fields leave the current
// value in place.
type FileConfig struct {
	ServerBaseURL       string         `json:"server_base_url" toml:"server_base_url"`
	DatabasePath        string         `json:"database_path" toml:"database_path"`
	RequestTimeout      timex.Duration `json:"request_timeout" toml:"request_timeout"`
	RefreshWindow       timex.Duration `json:"refresh_window" toml:"refresh_window"`
	HealthCheckInterval timex.Duration `json:"health_check_interval" toml:"health_check_interval"`
	LogLevel            string         `json:"log_level" toml:"log_level"`
	MetricsAddr         string         `json:"metrics_addr" toml:"metrics_addr"`
}

// parseFile overlays cfg with the config file named in args or the
// environment. Files ending in .toml are TOML, everything else JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	fc.apply(cfg)
	return nil
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.ServerBaseURL != "" {
		cfg.ServerBaseURL = fc.ServerBaseURL
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.RefreshWindow.Duration > 0 {
		cfg.RefreshWindow = fc.RefreshWindow.Duration
	}
	if fc.HealthCheckInterval.Duration > 0 {
		cfg.HealthCheckInterval = fc.HealthCheckInterval.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
}
