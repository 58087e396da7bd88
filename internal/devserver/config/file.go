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

// FileConfig is the file form of Config. Absent fields keep their current
// value.
type FileConfig struct {
	Address                     *string         `json:"address" yaml:"address"`
	SeedFile                    *string         `json:"seed_file" yaml:"seed_file"`
	SecretKey                   *string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	LogDriver                   *string         `json:"log_driver" yaml:"log_driver"`
	LogLevel                    *string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c/-config (or CLANSESSION_CONFIG) into
// config. It panics if the file cannot be read or decoded.
func parseFile(config *Config) {
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

	for dst, src := range map[*string]*string{
		&config.Address:   fc.Address,
		&config.SeedFile:  fc.SeedFile,
		&config.SecretKey: fc.SecretKey,
		&config.LogDriver: fc.LogDriver,
		&config.LogLevel:  fc.LogLevel,
	} {
		if src != nil {
			*dst = *src
		}
	}
	if fc.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
}
