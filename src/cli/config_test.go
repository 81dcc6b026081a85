// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Defaults",
			testFunc: func(t *testing.T) {
				t.Setenv(ConfigEnv, "")

				cfg, err := loadConfig("")
				require.NoError(t, err)
				assert.Equal(t, &Config{Port: defaultPort, Timeout: defaultTimeout}, cfg)
			},
		},
		{
			name: "JSON",
			testFunc: func(t *testing.T) {
				path := writeFile(t, "resolver.json", `{
  "host": "api.example.com",
  "port": 8443,
  "certificate": "/etc/pki/root.pem",
  "rootCAs": "/etc/pki/bundle.pem",
  "strict": true,
  "timeoutSeconds": 5
}`)

				cfg, err := loadConfig(path)
				require.NoError(t, err)
				assert.Equal(t, &Config{
					Host:        "api.example.com",
					Port:        8443,
					Certificate: "/etc/pki/root.pem",
					RootCAs:     "/etc/pki/bundle.pem",
					Strict:      true,
					Timeout:     5,
				}, cfg)
			},
		},
		{
			name: "YAML",
			testFunc: func(t *testing.T) {
				path := writeFile(t, "resolver.yml", `
host: api.example.com
certificate: root.der
strict: true
`)

				cfg, err := loadConfig(path)
				require.NoError(t, err)
				assert.Equal(t, "api.example.com", cfg.Host)
				assert.Equal(t, "root.der", cfg.Certificate)
				assert.True(t, cfg.Strict)
				assert.Equal(t, defaultPort, cfg.Port, "missing port keeps the default")
				assert.Equal(t, defaultTimeout, cfg.Timeout)
			},
		},
		{
			name: "Invalid Values Reset To Defaults",
			testFunc: func(t *testing.T) {
				path := writeFile(t, "resolver.yaml", "host: a\nport: 0\ntimeoutSeconds: 0\n")

				cfg, err := loadConfig(path)
				require.NoError(t, err)
				assert.Equal(t, defaultPort, cfg.Port)
				assert.Equal(t, defaultTimeout, cfg.Timeout)
			},
		},
		{
			name: "Environment Variable",
			testFunc: func(t *testing.T) {
				t.Setenv(ConfigEnv, writeFile(t, "env.json", `{"host": "env.example.com"}`))

				cfg, err := loadConfig("")
				require.NoError(t, err)
				assert.Equal(t, "env.example.com", cfg.Host)
			},
		},
		{
			name: "Missing File",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(filepath.Join(t.TempDir(), "missing.json"))
				assert.ErrorContains(t, err, "failed to read config file")
			},
		},
		{
			name: "Malformed JSON",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(writeFile(t, "bad.json", "{host"))
				assert.ErrorContains(t, err, "failed to parse JSON config file")
			},
		},
		{
			name: "Malformed YAML",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(writeFile(t, "bad.yaml", "host: [unterminated"))
				assert.ErrorContains(t, err, "failed to parse YAML config file")
			},
		},
		{
			name: "Unknown Key",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(writeFile(t, "typo.yaml", "host: a\ncert: root.pem\n"))
				require.ErrorIs(t, err, ErrInvalidConfig)
				assert.ErrorContains(t, err, "cert")
			},
		},
		{
			name: "Wrong Type",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(writeFile(t, "types.json", `{"host": "a", "port": "443"}`))
				assert.ErrorIs(t, err, ErrInvalidConfig)
			},
		},
		{
			name: "Port Out Of Range",
			testFunc: func(t *testing.T) {
				_, err := loadConfig(writeFile(t, "range.yaml", "port: 70000\n"))
				assert.ErrorIs(t, err, ErrInvalidConfig)
			},
		},
		{
			name: "Empty YAML",
			testFunc: func(t *testing.T) {
				cfg, err := loadConfig(writeFile(t, "empty.yaml", ""))
				require.NoError(t, err)
				assert.Equal(t, defaultPort, cfg.Port)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestDetectConfigFormat(t *testing.T) {
	assert.Equal(t, configFormatYAML, detectConfigFormat("a.yaml"))
	assert.Equal(t, configFormatYAML, detectConfigFormat("A.YML"))
	assert.Equal(t, configFormatJSON, detectConfigFormat("a.json"))
	assert.Equal(t, configFormatJSON, detectConfigFormat("a"))
}
