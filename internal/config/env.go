package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "ADAPTYPE_"

// EnvConfig holds overrides read from ADAPTYPE_* variables. Unset variables
// leave the pointers nil.
type EnvConfig struct {
	Name     *string `env:"NAME"`
	Words    *int    `env:"WORDS"`
	WordList *string `env:"WORDLIST"`
	KeySizes *string `env:"KEY_SIZES"`
	DB       *string `env:"DB"`
	LogLevel *string `env:"LOG_LEVEL"`
	LogFile  *string `env:"LOG_FILE"`
}

// LoadEnv parses ADAPTYPE_* environment variables.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// WithEnv returns a copy of c with every set environment value applied.
func (c FileConfig) WithEnv(e EnvConfig) FileConfig {
	if e.Name != nil {
		c.Practice.Name = e.Name
	}
	if e.Words != nil {
		c.Practice.Words = e.Words
	}
	if e.WordList != nil {
		c.Practice.WordList = e.WordList
	}
	if e.KeySizes != nil {
		c.Practice.KeySizes = e.KeySizes
	}
	if e.DB != nil {
		c.Storage.DB = e.DB
	}
	if e.LogLevel != nil {
		c.Log.Level = e.LogLevel
	}
	if e.LogFile != nil {
		c.Log.File = e.LogFile
	}
	return c
}
