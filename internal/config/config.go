// Package config loads gateway configuration from an optional YAML file and
// GATEWAY_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Auth validation modes.
const (
	AuthModeNone   = "none"
	AuthModeStatic = "static"
	AuthModeJWT    = "jwt"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
	Upstream UpstreamConfig `koanf:"upstream"`
}

type ServerConfig struct {
	Port        int    `koanf:"port"`
	Environment string `koanf:"environment"`
}

type AuthConfig struct {
	Mode      string       `koanf:"mode"`
	StaticKey string       `koanf:"static_key"`
	Issuer    IssuerConfig `koanf:"issuer"`
}

// IssuerConfig holds the third-party token issuer credentials. Only URL is
// consulted during token validation; the keys are checked for presence at
// startup.
type IssuerConfig struct {
	URL        string `koanf:"url"`
	AnonKey    string `koanf:"anon_key"`
	ServiceKey string `koanf:"service_key"`
}

type LoggingConfig struct {
	Level   string        `koanf:"level"`
	Console ConsoleConfig `koanf:"console"`
	Audit   AuditConfig   `koanf:"audit"`
}

type ConsoleConfig struct {
	Enabled   bool `koanf:"enabled"`
	Colorized bool `koanf:"colorized"`
}

type AuditConfig struct {
	Enabled  bool   `koanf:"enabled"`
	MinLevel string `koanf:"min_level"`
	Path     string `koanf:"path"`
}

type UpstreamConfig struct {
	URL   string `koanf:"url"`
	Model string `koanf:"model"`
}

// Load builds the configuration. When path is non-empty the YAML file is
// loaded first; environment variables always overlay file values.
// GATEWAY_AUTH__STATIC_KEY maps to auth.static_key.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"server.port":               8080,
		"server.environment":        "development",
		"auth.mode":                 AuthModeNone,
		"logging.level":             "info",
		"logging.console.enabled":   true,
		"logging.console.colorized": true,
		"logging.audit.enabled":     false,
		"logging.audit.min_level":   "error",
		"logging.audit.path":        "./data/audit.db",
		"upstream.url":              "http://localhost:11434",
		"upstream.model":            "gemma2:7b",
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("GATEWAY_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "GATEWAY_")), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
