// Package config loads and validates the gateway configuration.
//
// DESIGN: All configuration MUST come from YAML files. No defaults beyond
// what Validate documents. This keeps deployments explicit and auditable.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the model gateway.
type Config struct {
	Server     ServerConfig     `yaml:"server"`     // HTTP server settings
	Bedrock    BedrockConfig    `yaml:"bedrock"`    // Bedrock runtime settings
	Store      StoreConfig      `yaml:"store"`      // Invocation audit store
	Monitoring MonitoringConfig `yaml:"monitoring"` // Logging settings
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // Port to listen on
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Max time to read request
	WriteTimeout time.Duration `yaml:"write_timeout"` // Max time to write response
}

// BedrockConfig contains Bedrock runtime invocation settings.
// Endpoint overrides the regional default; useful for local stubs.
type BedrockConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// StoreConfig contains invocation audit store settings.
type StoreConfig struct {
	Type string `yaml:"type"` // "memory" or "sqlite"
	Path string `yaml:"path"` // sqlite database file (sqlite only)
}

// MonitoringConfig contains logging settings.
type MonitoringConfig struct {
	LogLevel      string `yaml:"log_level"`      // zerolog level name
	LogFormat     string `yaml:"log_format"`     // "json" or "console"
	LogOutput     string `yaml:"log_output"`     // "stdout", "stderr", or a file path
	InvocationLog bool   `yaml:"invocation_log"` // per-invocation structured logging
}

// expandEnvWithDefaults expands environment variables with support for
// default values. Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load reads configuration from a YAML file.
// Returns an error if the file doesn't exist or is invalid.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes.
// Supports ${VAR:-default} env var expansion and validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Bedrock.Region == "" && c.Bedrock.Endpoint == "" {
		return fmt.Errorf("bedrock.region is required when no endpoint override is set")
	}

	switch c.Store.Type {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("store.type must be \"memory\" or \"sqlite\", got %q", c.Store.Type)
	}

	switch c.Monitoring.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("monitoring.log_format must be \"json\" or \"console\", got %q", c.Monitoring.LogFormat)
	}

	return nil
}
