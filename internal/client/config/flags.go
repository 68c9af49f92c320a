package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/hangarkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   base URL of the remote API
//	-d string   path to the local SQLite database
//	-s int      default stale time (seconds)
//	-g int      cache GC window (minutes)
//	-i int      online check interval (seconds)
//	-m string   metrics listen address
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first so the -c flag and
// anything else owned by other parsers is ignored here.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-g", "-i", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIURL, "a", cfg.APIURL, "base URL of the API")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	staleTime := fs.Int("s", int(cfg.StaleTime.Seconds()), "default stale time (in seconds)")
	gcWindow := fs.Int("g", int(cfg.GCWindow.Minutes()), "cache gc window (in minutes)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.StaleTime = time.Duration(*staleTime) * time.Second
	cfg.GCWindow = time.Duration(*gcWindow) * time.Minute
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
