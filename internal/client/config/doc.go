// Package config loads runtime configuration for the edachat client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config, or the
//     EDACHAT_CONFIG environment variable. A .toml extension selects TOML,
//     anything else is read as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-d string   local SQLite database path
//	-t int      request timeout (seconds)
//	-i int      health check interval (seconds)
//	-l string   log level
//	-m string   metrics listen address
//
// # File schema
//
//	{
//	  "server_base_url": "http://127.0.0.1:5000",
//	  "database_path": "edachat.db",
//	  "request_timeout": "30s",
//	  "refresh_window": "2m",
//	  "health_check_interval": "10s",
//	  "log_level": "info",
//	  "metrics_addr": "127.0.0.1:9464"
//	}
//
// The TOML form uses the same keys.
package config
