// Package config loads runtime configuration for the session client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c / -config (or CLANSESSION_CONFIG).
//     Files ending in .yaml or .yml are parsed as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-u string   backend base URL
//	-d string   SQLite database path
//	-s string   store driver: sqlite, memory or redis
//	-r string   redis address (host:port)
//	-l string   log level: debug, info, warn, error
//	-t int      HTTP timeout (seconds)
//
// # File schema
//
// Durations can be strings like "2h" or integer nanoseconds:
//
//	{
//	  "base_url": "http://127.0.0.1:8101/",
//	  "store_driver": "sqlite",
//	  "database_path": "session.db",
//	  "passphrase": "",
//	  "log_driver": "zap",
//	  "token_ttl": "2h",
//	  "user_cache_ttl": "30m",
//	  "refresh_schedule": "@every 1m"
//	}
//
// Only keys present in the file override defaults.
package config
