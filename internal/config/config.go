// Package config loads service settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	KindHTTP     = "http"
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// Insight providers.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
	ProviderNone   = "none"
)

const (
	DefaultSourceURL    = "https://script.google.com/macros/s/AKfycbxRd_UZpjwnFaGAjqtSsSIKb7wGjMUxUsaG3owqVRMtLiD8yEKfrseUZM64YNTbWZJR6g/exec"
	DefaultFallbackPath = "songs.json"
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Sources []SourceConfig `yaml:"sources"`
	Insight InsightConfig  `yaml:"insight"`
	Tags    TagsConfig     `yaml:"tags"`
	Logging LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	EvictInterval   time.Duration `yaml:"evict_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SourceConfig describes one song source. Sources are tried in order.
type SourceConfig struct {
	Name    string        `yaml:"name"`
	Kind    string        `yaml:"kind"` // http, file, sqlite, postgres
	URL     string        `yaml:"url"`
	Path    string        `yaml:"path"`
	DSN     string        `yaml:"dsn"`
	Limit   int           `yaml:"limit"`
	Timeout time.Duration `yaml:"timeout"`
}

type InsightConfig struct {
	Provider       string        `yaml:"provider"` // gemini, ollama, none
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	ThinkingBudget int32         `yaml:"thinking_budget"`
	BaseURL        string        `yaml:"base_url"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	Timeout        time.Duration `yaml:"timeout"` // 0 means none
}

type TagsConfig struct {
	Delimiters []string `yaml:"delimiters"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the configuration used when nothing is overridden:
// the live sheet endpoint first, then the bundled songs.json.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      30 * time.Minute,
			EvictInterval:   time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Sources: []SourceConfig{
			{Name: "primary", Kind: KindHTTP, URL: DefaultSourceURL, Timeout: 20 * time.Second},
			{Name: "fallback", Kind: KindFile, Path: DefaultFallbackPath},
		},
		Insight: InsightConfig{
			Provider:  ProviderGemini,
			Workers:   2,
			QueueSize: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file next to the working directory and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	envFile := ".env"
	if path != "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	_ = godotenv.Load(envFile)

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("SONGBOOK_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SONGBOOK_SESSION_TTL: %w", err)
		}
		c.Server.SessionTTL = d
	}

	if v := os.Getenv("SONGBOOK_SOURCE_URL"); v != "" {
		if src := c.firstOfKind(KindHTTP); src != nil {
			src.URL = v
		}
	}
	if v := os.Getenv("SONGBOOK_FALLBACK_PATH"); v != "" {
		if src := c.firstOfKind(KindFile); src != nil {
			src.Path = v
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		if src := c.firstOfKind(KindPostgres); src != nil {
			src.DSN = v
		}
	}

	// GEMINI_API_KEY wins over the generic API_KEY.
	if v := os.Getenv("API_KEY"); v != "" {
		c.Insight.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Insight.APIKey = v
	}
	if v := os.Getenv("SONGBOOK_INSIGHT_PROVIDER"); v != "" {
		c.Insight.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" && c.Insight.Provider == ProviderOllama {
		c.Insight.BaseURL = v
	}
	if v := os.Getenv("SONGBOOK_INSIGHT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SONGBOOK_INSIGHT_WORKERS: %w", err)
		}
		c.Insight.Workers = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

func (c *Config) firstOfKind(kind string) *SourceConfig {
	for i := range c.Sources {
		if c.Sources[i].Kind == kind {
			return &c.Sources[i]
		}
	}
	return nil
}

// Validate reports every problem found, not just the first.
func (c Config) Validate() error {
	var errs error

	if len(c.Sources) == 0 {
		errs = multierr.Append(errs, errors.New("at least one source is required"))
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		label := fmt.Sprintf("sources[%d]", i)
		if s.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: name is required", label))
		} else if seen[s.Name] {
			errs = multierr.Append(errs, fmt.Errorf("%s: duplicate name %q", label, s.Name))
		}
		seen[s.Name] = true

		switch s.Kind {
		case KindHTTP:
			if s.URL == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: url is required for http sources", label))
			}
		case KindFile, KindSQLite:
			if s.Path == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: path is required for %s sources", label, s.Kind))
			}
		case KindPostgres:
			if s.DSN == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: dsn is required for postgres sources", label))
			}
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: unknown kind %q", label, s.Kind))
		}
	}

	switch c.Insight.Provider {
	case ProviderGemini, ProviderOllama, ProviderNone:
	default:
		errs = multierr.Append(errs, fmt.Errorf("insight: unknown provider %q", c.Insight.Provider))
	}
	if c.Insight.Workers < 1 {
		errs = multierr.Append(errs, errors.New("insight: workers must be at least 1"))
	}
	if c.Insight.QueueSize < 1 {
		errs = multierr.Append(errs, errors.New("insight: queue_size must be at least 1"))
	}
	if c.Insight.Timeout < 0 {
		errs = multierr.Append(errs, errors.New("insight: timeout must not be negative"))
	}

	if errs != nil {
		return fmt.Errorf("config: invalid: %w", errs)
	}
	return nil
}
