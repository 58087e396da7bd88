// Package config handles configuration for the development backend,
// including defaults, a JSON or YAML overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development backend.
//
// Fields:
//   - Address: bind address for the HTTP endpoint.
//   - SeedFile: optional JSON/YAML file with users, teams and tasks.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Empty means
//     opaque tokens.
//   - AccessTokenValidityDuration: lifetime of signed access tokens.
type Config struct {
	Address                     string
	SeedFile                    string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	LogDriver                   string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret is for local use only.
func (c *Config) LoadDefaults() {
	c.Address = "127.0.0.1:8101"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 2 * time.Hour
	c.LogDriver = "slog"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
