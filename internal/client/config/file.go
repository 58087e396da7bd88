package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/clansession/internal/flagx"
	"github.com/dmitrijs2005/clansession/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Pointer
// fields distinguish "absent" from a zero value so a partial file only
// overrides what it names.
type FileConfig struct {
	BaseURL            *string         `json:"base_url" yaml:"base_url"`
	BasePath           *string         `json:"base_path" yaml:"base_path"`
	StoreDriver        *string         `json:"store_driver" yaml:"store_driver"`
	DatabasePath       *string         `json:"database_path" yaml:"database_path"`
	RedisAddr          *string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword      *string         `json:"redis_password" yaml:"redis_password"`
	RedisDB            *int            `json:"redis_db" yaml:"redis_db"`
	Passphrase         *string         `json:"passphrase" yaml:"passphrase"`
	LogDriver          *string         `json:"log_driver" yaml:"log_driver"`
	LogLevel           *string         `json:"log_level" yaml:"log_level"`
	TokenTTL           *timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	TokenRefreshMargin *timex.Duration `json:"token_refresh_margin" yaml:"token_refresh_margin"`
	UserCacheTTL       *timex.Duration `json:"user_cache_ttl" yaml:"user_cache_ttl"`
	HTTPTimeout        *timex.Duration `json:"http_timeout" yaml:"http_timeout"`
	CaptchaType        *string         `json:"captcha_type" yaml:"captcha_type"`
	RefreshSchedule    *string         `json:"refresh_schedule" yaml:"refresh_schedule"`
}

// parseFile overlays Config with values loaded from the config file named
// on the command line. It panics on read or decode errors; a broken config
// file is a startup failure.
func parseFile(cfg *Config) {
	path := flagx.ConfigFile(os.Args[1:])
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

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.BasePath, fc.BasePath)
	setString(&cfg.StoreDriver, fc.StoreDriver)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPassword, fc.RedisPassword)
	setString(&cfg.Passphrase, fc.Passphrase)
	setString(&cfg.LogDriver, fc.LogDriver)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.CaptchaType, fc.CaptchaType)
	setString(&cfg.RefreshSchedule, fc.RefreshSchedule)
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	if fc.TokenTTL != nil {
		cfg.TokenTTL = fc.TokenTTL.Duration
	}
	if fc.TokenRefreshMargin != nil {
		cfg.TokenRefreshMargin = fc.TokenRefreshMargin.Duration
	}
	if fc.UserCacheTTL != nil {
		cfg.UserCacheTTL = fc.UserCacheTTL.Duration
	}
	if fc.HTTPTimeout != nil {
		cfg.HTTPTimeout = fc.HTTPTimeout.Duration
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
