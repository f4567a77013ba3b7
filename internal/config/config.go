// Package config loads gateway configuration from an optional YAML file and
// the process environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the HTTP bridge listen port.
	DefaultPort = "3000"
	// DefaultBaseURL is the Maps web service root.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 10 * time.Second
)

// Config holds the gateway settings. The user-facing schema is apiKey and
// debug; the rest are deployment knobs.
//
// APIKey is read from the file only. GOOGLE_MAPS_API_KEY is left to the
// credential resolver, which ranks the process environment below request
// headers and the request body.
type Config struct {
	APIKey  string        `yaml:"apiKey"`
	Debug   bool          `yaml:"debug" env:"DEBUG"`
	Port    string        `yaml:"port" env:"PORT"`
	BaseURL string        `yaml:"baseURL" env:"GOOGLE_MAPS_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"GOOGLE_MAPS_TIMEOUT"`
	// Token, when set, requires "Authorization: Bearer <token>" on /mcp.
	Token string `yaml:"token" env:"MCP_TOKEN"`
}

// Load reads the YAML file at path (skipped when empty), overlays the process
// environment and fills defaults.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil map reads the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := parseEnv(&cfg, environ); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func parseEnv(target any, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}
