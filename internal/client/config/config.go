package config

import "time"

// Config holds runtime settings for the session client.
//
// Durations are time.Duration values; the file loaders accept "2h"-style
// strings through timex.Duration.
type Config struct {
	// BaseURL is the backend root, e.g. "http://10.0.2.2:8101/".
	BaseURL string
	// BasePath is stripped from request paths before the auth exclusion
	// list is consulted, for backends mounted under a prefix.
	BasePath string

	StoreDriver   string
	DatabasePath  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Passphrase enables encryption at rest when non-empty.
	Passphrase string

	LogDriver string
	LogLevel  string

	TokenTTL           time.Duration
	TokenRefreshMargin time.Duration
	UserCacheTTL       time.Duration
	HTTPTimeout        time.Duration

	CaptchaType string
	// RefreshSchedule is a cron spec for the background token refresh.
	// Empty disables it.
	RefreshSchedule string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8101/"
	c.StoreDriver = "sqlite"
	c.DatabasePath = "session.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.LogDriver = "slog"
	c.LogLevel = "info"
	c.TokenTTL = 2 * time.Hour
	c.TokenRefreshMargin = 5 * time.Minute
	c.UserCacheTTL = 30 * time.Minute
	c.HTTPTimeout = 30 * time.Second
	c.CaptchaType = "blockPuzzle"
	c.RefreshSchedule = "@every 1m"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
