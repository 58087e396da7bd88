package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CLANSESSION_CONFIG", "")

	t.Run("loads json", func(t *testing.T) {
		path := writeTempFile(t, "cfg.json", `{
			"base_url": "http://www.example:9000/",
			"store_driver": "redis",
			"redis_db": 3,
			"token_ttl": "1h",
			"http_timeout": "10s"
		}`)
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "http://www.example:9000/", cfg.BaseURL)
		assert.Equal(t, "redis", cfg.StoreDriver)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 30*time.Minute, cfg.UserCacheTTL, "absent keys keep defaults")
	})

	t.Run("loads yaml", func(t *testing.T) {
		path := writeTempFile(t, "cfg.yaml", "base_url: http://yaml:1/\nlog_driver: zap\nuser_cache_ttl: 10m\npassphrase: s3cret\nrefresh_schedule: \"\"\n")
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "http://yaml:1/", cfg.BaseURL)
		assert.Equal(t, "zap", cfg.LogDriver)
		assert.Equal(t, 10*time.Minute, cfg.UserCacheTTL)
		assert.Equal(t, "s3cret", cfg.Passphrase)
		assert.Empty(t, cfg.RefreshSchedule, "explicit empty disables the refresher")
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	})

	t.Run("env names the file", func(t *testing.T) {
		path := writeTempFile(t, "env.yml", "database_path: env.db\n")
		t.Setenv("CLANSESSION_CONFIG", path)
		os.Args = []string{"testbin"}

		cfg := &Config{}
		parseFile(cfg)

		assert.Equal(t, "env.db", cfg.DatabasePath)
	})

	t.Run("no file → no changes", func(t *testing.T) {
		t.Setenv("CLANSESSION_CONFIG", "")
		os.Args = []string{"testbin"}

		cfg := &Config{BaseURL: "defaults:1234", HTTPTimeout: 42 * time.Second}
		parseFile(cfg)

		assert.Equal(t, "defaults:1234", cfg.BaseURL)
		assert.Equal(t, 42*time.Second, cfg.HTTPTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := writeTempFile(t, "bad.json", `{ this is not valid json`)
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}
