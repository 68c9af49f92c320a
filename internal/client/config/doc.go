// Package config loads runtime configuration for the hangarkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. JSON by default,
//     YAML when the file ends in .yaml or .yml.
//  3. Environment: HANGAR_API_URL and HANGAR_DB_PATH.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the remote API
//	-d string   local database path
//	-s int      default stale time (seconds)
//	-g int      cache GC window (minutes)
//	-i int      online status check interval (seconds)
//	-m string   metrics listen address (empty disables /metrics)
//	-l string   log level
//
// # File schema
//
//	{
//	  "api_url": "https://api.example.com",
//	  "db_path": "hangarkeeper.db",
//	  "stale_time": "30s",
//	  "gc_window": "5m",
//	  "online_check_interval": "3s",
//	  "metrics_addr": ":9100",
//	  "log_level": "debug"
//	}
package config
