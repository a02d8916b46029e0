// Package config loads highsmon settings from a config file, environment
// variables, and defaults. Explicit command-line flags always win.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the resolved monitor settings.
type Config struct {
	History        int    `mapstructure:"history"`
	StallThreshold int    `mapstructure:"stallThreshold"`
	JSONReport     string `mapstructure:"jsonReport"`
	MetricsAddr    string `mapstructure:"metricsAddr"`
	NoColor        bool   `mapstructure:"noColor"`
}

// Load reads configuration. cfgFile may be empty, in which case a
// .highsmon.yaml in the working directory is used when present. Environment
// variables use the HIGHSMON_ prefix (e.g. HIGHSMON_HISTORY).
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("history", 50)
	v.SetDefault("stallThreshold", 20)
	v.SetDefault("jsonReport", "")
	v.SetDefault("metricsAddr", "")
	v.SetDefault("noColor", false)

	v.SetEnvPrefix("HIGHSMON")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName(".highsmon")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.History <= 0 {
		return nil, fmt.Errorf("invalid configuration: history must be positive, got %d", cfg.History)
	}
	if cfg.StallThreshold <= 0 {
		return nil, fmt.Errorf("invalid configuration: stallThreshold must be positive, got %d", cfg.StallThreshold)
	}

	return &cfg, nil
}
