package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/clansession/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   backend base URL
//	-d string   SQLite database path
//	-s string   store driver
//	-r string   redis address
//	-l string   log level
//	-t int      HTTP timeout in seconds
//
// Only these flags are read from os.Args (see flagx.Parse), so -c/-config
// and unrelated flags do not interfere.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "SQLite database path")
	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "store driver: sqlite, memory or redis")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")

	if err := flagx.Parse(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second
}
