// Package config loads the wsc client configuration from YAML.
//
// Example:
//
//	host: 127.0.0.1
//	port: 9001
//	path: /
//	options:
//	  connect_timeout: 5s
//	  receive_timeout: 0s
//	  send_timeout: 5s
//	  keep_alive: true
//	  verify_accept: false
//	log:
//	  level: info
//	  format: text
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"websocket-client/internal/domain"
	"websocket-client/internal/infrastructure"
	"websocket-client/pkg/logging"
)

// ErrInvalidYAML is returned when the file is not valid YAML
var ErrInvalidYAML = errors.New("invalid YAML")

// LogConfig selects the logger level and format
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the complete client configuration
type Config struct {
	Host    string         `yaml:"host"`
	Port    int            `yaml:"port"`
	Path    string         `yaml:"path"`
	Options domain.Options `yaml:"options"`
	Log     LogConfig      `yaml:"log"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    9001,
		Path:    "/",
		Options: domain.DefaultOptions(),
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}

// Load reads and parses the file at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result.
// Keys missing from data keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the target, the request path and the options
func (c *Config) Validate() error {
	if err := infrastructure.ValidateTarget(c.Host, c.Port); err != nil {
		return err
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("path must start with '/', got %q", c.Path)
	}
	return c.Options.Validate()
}

// Logging returns the logging configuration for this file
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Log.Level)
	cfg.Format = logging.ParseFormat(c.Log.Format)
	return cfg
}
