// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/helper/gc"
)

// ConfigEnv names the environment variable holding the configuration file
// path used when --config is not given.
const ConfigEnv = "TLS_ROOT_CA_RESOLVER_CONFIG"

const (
	defaultPort    = 443
	defaultTimeout = 10
)

// ErrInvalidConfig is returned when a configuration file does not match [configSchema].
var ErrInvalidConfig = errors.New("invalid config file")

// configSchema is the JSON Schema every configuration file, JSON or YAML, must satisfy.
const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "host": {"type": "string"},
    "port": {"type": "integer", "minimum": 0, "maximum": 65535},
    "certificate": {"type": "string"},
    "rootCAs": {"type": "string"},
    "strict": {"type": "boolean"},
    "timeoutSeconds": {"type": "integer", "minimum": 0}
  }
}`

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config is the resolver configuration read from a JSON or YAML file.
// Command-line flags override any value set here.
type Config struct {
	// Host: Host the pinned certificate applies to
	Host string `json:"host" yaml:"host"`
	// Port: TLS port to connect to
	Port int `json:"port" yaml:"port"`
	// Certificate: Path to the pinned certificate (PEM, DER, or PKCS#7)
	Certificate string `json:"certificate,omitempty" yaml:"certificate,omitempty"`
	// RootCAs: Path to a PEM bundle used instead of the system roots for default handling
	RootCAs string `json:"rootCAs,omitempty" yaml:"rootCAs,omitempty"`
	// Strict: Reject instead of falling back to default handling on a pin mismatch
	Strict bool `json:"strict" yaml:"strict"`
	// Timeout: Dial and request timeout in seconds
	Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
}

// detectConfigFormat determines the configuration file format based on file extension.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// validateConfig checks the raw document against [configSchema] before it is
// decoded, so unknown keys and mistyped values are reported instead of ignored.
func validateConfig(data []byte, format configFormat) error {
	var document gojsonschema.JSONLoader
	switch format {
	case configFormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
		document = gojsonschema.NewGoLoader(raw)
	default:
		document = gojsonschema.NewBytesLoader(data)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(configSchema), document)
	if err != nil {
		return fmt.Errorf("failed to parse JSON config file: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
	}
	return nil
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	if err := validateConfig(data, format); err != nil {
		return err
	}

	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// loadConfig loads the configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//     Supported formats: .json, .yaml, .yml
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: If the configuration file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. TLS_ROOT_CA_RESOLVER_CONFIG environment variable is checked if configPath is empty
//  3. Config file values override defaults (if a path is known), after
//     validation against the config schema
//
// Flags are applied on top by the caller.
func loadConfig(configPath string) (*Config, error) {
	config := &Config{
		Port:    defaultPort,
		Timeout: defaultTimeout,
	}

	if configPath == "" {
		configPath = os.Getenv(ConfigEnv)
	}

	if configPath != "" {
		data, err := gc.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := unmarshalConfig(data, config, detectConfigFormat(configPath)); err != nil {
			return nil, err
		}

		if config.Port <= 0 {
			config.Port = defaultPort
		}
		if config.Timeout <= 0 {
			config.Timeout = defaultTimeout
		}
	}

	return config, nil
}
