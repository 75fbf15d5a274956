package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	yaml "gopkg.in/yaml.v2"
)

// StaticConfig is the front-end configuration for the CLI and HTTP API.
// It controls wiring only; scoring calibration lives in RiskConfig.
type StaticConfig struct {
	// LogLevel is a logrus level name (debug, info, warn, error)
	LogLevel string `yaml:"LogLevel" default:"info"`

	// CalibrationVersion pins a RiskConfig version; empty means latest
	CalibrationVersion string `yaml:"CalibrationVersion" default:""`

	// DatabaseURI enables the Postgres scan-history store when non-empty
	DatabaseURI string `yaml:"DatabaseURI" default:""`

	// ListenAddr is the HTTP API bind address
	ListenAddr string `yaml:"ListenAddr" default:":8080"`

	// IntelFeedPath points at an optional newline-delimited extra deny
	// list merged into the bundled feed at startup
	IntelFeedPath string `yaml:"IntelFeedPath" default:""`
}

// LoadStaticConfig reads a YAML config file, applying defaults for missing
// fields and expanding environment variables in string values. An empty
// path yields the pure-default configuration.
func LoadStaticConfig(path string) (*StaticConfig, error) {
	cfg := new(StaticConfig)
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("static config defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("static config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("static config %s: %w", path, err)
		}
	}

	cfg.DatabaseURI = os.ExpandEnv(cfg.DatabaseURI)
	cfg.IntelFeedPath = os.ExpandEnv(cfg.IntelFeedPath)
	cfg.ListenAddr = os.ExpandEnv(cfg.ListenAddr)
	return cfg, nil
}

// RiskConfigFor resolves the calibration named by the static config
func (c *StaticConfig) RiskConfigFor() (*RiskConfig, error) {
	if c.CalibrationVersion == "" {
		return Latest(), nil
	}
	return ForVersion(c.CalibrationVersion)
}
