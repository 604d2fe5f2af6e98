// Package config loads homebase settings from YAML, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"homebase/internal/schedule"
	"homebase/internal/suggest"
	"homebase/internal/verification"
)

// DefaultPath is where serve looks for a config file
const DefaultPath = "configs/config.yaml"

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	MetricsConfig struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
		Seed   bool   `yaml:"seed"`
	} `yaml:"database"`
	Scheduler struct {
		Interval  time.Duration `yaml:"interval"`
		Lookahead time.Duration `yaml:"lookahead"`
	} `yaml:"scheduler"`
	Verification struct {
		Staleness time.Duration `yaml:"staleness"`
	} `yaml:"verification"`
	Suggestions struct {
		Provider string        `yaml:"provider"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"suggestions"`
	LogLevel string `yaml:"log_level"`

	// Credentials only ever come from the environment
	OpenAIKey   string `yaml:"-"`
	GitHubToken string `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{LogLevel: "info"}
	c.Server.Port = 8080
	c.MetricsConfig.Enabled = true
	c.MetricsConfig.Port = 9090
	c.MetricsConfig.Path = "/metrics"
	c.Database.Driver = "memory"
	c.Database.Seed = true
	c.Scheduler.Interval = schedule.DefaultInterval
	c.Scheduler.Lookahead = schedule.DefaultLookahead
	c.Verification.Staleness = verification.DefaultStaleness
	c.Suggestions.Provider = suggest.ProviderNone
	c.Suggestions.Timeout = 30 * time.Second
	return c
}

// Load reads .env (if present), then the YAML file at path (if present), then
// environment overrides, and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}

	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("config: %s not found, using defaults", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HOMEBASE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOMEBASE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("HOMEBASE_DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("HOMEBASE_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.GitHubToken = os.Getenv("GITHUB_TOKEN")
	return nil
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.MetricsConfig.Enabled && (c.MetricsConfig.Port <= 0 || c.MetricsConfig.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.MetricsConfig.Port)
	}
	switch c.Database.Driver {
	case "memory":
	case "sqlite3", "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database.driver: %q", c.Database.Driver)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be positive")
	}
	if c.Scheduler.Lookahead <= 0 {
		return fmt.Errorf("scheduler.lookahead must be positive")
	}
	if c.Verification.Staleness <= 0 {
		return fmt.Errorf("verification.staleness must be positive")
	}
	switch c.Suggestions.Provider {
	case suggest.ProviderNone, suggest.ProviderOpenAI, suggest.ProviderGitHubModels:
	default:
		return fmt.Errorf("unknown suggestions.provider: %q", c.Suggestions.Provider)
	}
	if c.Suggestions.Timeout <= 0 {
		return fmt.Errorf("suggestions.timeout must be positive")
	}
	return nil
}

// ProviderConfig returns the suggestion provider settings with the matching
// credential
func (c *Config) ProviderConfig() suggest.ProviderConfig {
	pc := suggest.ProviderConfig{
		Name:    c.Suggestions.Provider,
		Model:   c.Suggestions.Model,
		Timeout: c.Suggestions.Timeout,
	}
	switch c.Suggestions.Provider {
	case suggest.ProviderOpenAI:
		pc.Token = c.OpenAIKey
	case suggest.ProviderGitHubModels:
		pc.Token = c.GitHubToken
	}
	return pc
}
