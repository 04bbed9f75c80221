package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/edachat/internal/flagx"
)

var knownFlags = []string{"-a", "-d", "-t", "-i", "-l", "-m"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend API
//	-d string   path of the local SQLite database
//	-t int      request timeout in seconds
//	-i int      health check interval in seconds
//	-l string   log level
//	-m string   address to serve Prometheus metrics on
//
// Only the flags above are kept from args, using flagx.FilterArgs, so the
// config-file flag and anything else on the command line is ignored here.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("edachat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	interval := fs.Int("i", int(cfg.HealthCheckInterval.Seconds()), "health check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	// Durations are only replaced when given, so sub-second values from a
	// config file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		case "i":
			cfg.HealthCheckInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
