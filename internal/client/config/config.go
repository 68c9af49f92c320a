package config

import "time"

// Config holds runtime settings for the hangarkeeper CLI.
//
// Fields:
//   - APIURL: base URL of the remote REST API.
//   - DBPath: path to the local SQLite file for selection and credentials.
//   - StaleTime: default freshness window for cached reads.
//   - GCWindow: how long unobserved cache entries are kept.
//   - OnlineCheckInterval: how often the client probes API reachability.
//   - MetricsAddr: listen address for /metrics; empty disables it.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIURL              string
	DBPath              string
	StaleTime           time.Duration
	GCWindow            time.Duration
	OnlineCheckInterval time.Duration
	MetricsAddr         string
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://127.0.0.1:3000"
	c.DBPath = "hangarkeeper.db"
	c.StaleTime = 30 * time.Second
	c.GCWindow = 5 * time.Minute
	c.OnlineCheckInterval = 3 * time.Second
	c.MetricsAddr = ""
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file, the environment and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
