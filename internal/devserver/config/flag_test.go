package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-f", "seed.yaml", "-s", "secret", "-t", "1", "-l", "debug",
		}, expected: &Config{
			Address:                     "127.0.0.1:9090",
			SeedFile:                    "seed.yaml",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 1 * time.Minute,
			LogDriver:                   "slog",
			LogLevel:                    "debug",
		}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-x", "1", "-a", ":1"},
			expected: &Config{
				Address:                     ":1",
				SecretKey:                   "secretKey",
				AccessTokenValidityDuration: 2 * time.Hour,
				LogDriver:                   "slog",
				LogLevel:                    "info",
			}},
		{name: "bad minutes", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}
			config.LoadDefaults()

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
