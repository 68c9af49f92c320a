package config

import "os"

const (
	envAPIURL = "HANGAR_API_URL"
	envDBPath = "HANGAR_DB_PATH"
)

// parseEnv overrides the API URL and database path when the matching
// environment variables are set and non-empty.
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv(envAPIURL); ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := os.LookupEnv(envDBPath); ok && v != "" {
		cfg.DBPath = v
	}
}
