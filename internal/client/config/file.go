package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/hangarkeeper/internal/flagx"
	"github.com/dmitrijs2005/hangarkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for decoding config files.
// Intervals use timex.Duration so they can be written as "3s" or as
// integer nanoseconds. Zero values leave the current setting untouched.
type FileConfig struct {
	APIURL              string         `json:"api_url" yaml:"api_url"`
	DBPath              string         `json:"db_path" yaml:"db_path"`
	StaleTime           timex.Duration `json:"stale_time" yaml:"stale_time"`
	GCWindow            timex.Duration `json:"gc_window" yaml:"gc_window"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	MetricsAddr         string         `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays Config with values loaded from the file named by
// -c / -config. Files ending in .yaml or .yml are decoded as YAML,
// everything else as JSON. Panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.APIURL != "" {
		cfg.APIURL = fc.APIURL
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.StaleTime.Duration != 0 {
		cfg.StaleTime = fc.StaleTime.Duration
	}
	if fc.GCWindow.Duration != 0 {
		cfg.GCWindow = fc.GCWindow.Duration
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
