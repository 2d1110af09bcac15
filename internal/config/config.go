package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all counsellor configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Reasoning provider
	LLM LLMConfig `yaml:"llm"`

	// SQLite persistence
	Database DatabaseConfig `yaml:"database"`

	// HTTP surface
	Server ServerConfig `yaml:"server"`

	// Prompt digest bounds
	Context ContextConfig `yaml:"context"`

	// University catalog
	Catalog CatalogConfig `yaml:"catalog"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite (pure Go) or sqlite3 (cgo)
	Path   string `yaml:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
	Debug          bool     `yaml:"debug"`
}

// ContextConfig bounds the candidate digest handed to the reasoning provider.
type ContextConfig struct {
	// MaxCandidates caps the country-filtered query.
	MaxCandidates int `yaml:"max_candidates"`

	// BackfillThreshold triggers backfill when fewer filtered candidates came back.
	BackfillThreshold int `yaml:"backfill_threshold"`

	// BackfillLimit caps the unfiltered candidates added by backfill.
	BackfillLimit int `yaml:"backfill_limit"`
}

// CatalogConfig configures the university catalog.
type CatalogConfig struct {
	NameCacheSize int  `yaml:"name_cache_size"`
	SeedOnStart   bool `yaml:"seed_on_start"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "counsellor",
		Version: "1.0.0",

		LLM: LLMConfig{
			Timeout: "30s",
		},

		Database: DatabaseConfig{
			Driver: DriverModernc,
			Path:   "data/counsellor.db",
		},

		Server: ServerConfig{
			Addr: ":8000",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost:8080",
			},
			ReadTimeout:  "30s",
			WriteTimeout: "60s",
		},

		Context: ContextConfig{
			MaxCandidates:     20,
			BackfillThreshold: 10,
			BackfillLimit:     10,
		},

		Catalog: CatalogConfig{
			NameCacheSize: 512,
			SeedOnStart:   true,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Database drivers registered by the store package.
const (
	DriverModernc = "sqlite"
	DriverCgo     = "sqlite3"
)

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Later keys win: Groq is preferred over Gemini when both are set.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = ProviderGemini
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.Provider = ProviderGroq
	}

	if path := os.Getenv("COUNSELLOR_DB"); path != "" {
		c.Database.Path = path
	}
	if addr := os.Getenv("COUNSELLOR_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = ParseOrigins(origins)
	}
}

// ParseOrigins splits a comma-separated origin list. Entries without a scheme
// are expanded to both https and http variants.
func ParseOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		o := strings.TrimRight(strings.TrimSpace(origin), "/")
		if o == "" {
			continue
		}
		if strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://") {
			out = append(out, o)
			continue
		}
		out = append(out, "https://"+o, "http://"+o)
	}
	return out
}

// GetLLMTimeout returns the reasoning call timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 30*time.Second)
}

// GetReadTimeout returns the HTTP read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout returns the HTTP write timeout. It must outlive the
// reasoning call, so it never drops below the LLM timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	d := parseDuration(c.Server.WriteTimeout, 60*time.Second)
	if llm := c.GetLLMTimeout(); d <= llm {
		d = llm + 5*time.Second
	}
	return d
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set GROQ_API_KEY or GEMINI_API_KEY)")
	}

	if !IsValidProvider(c.LLM.Provider) {
		return fmt.Errorf("invalid LLM provider: %s (valid: %v)", c.LLM.Provider, ValidProviders)
	}

	switch c.Database.Driver {
	case DriverModernc, DriverCgo:
	default:
		return fmt.Errorf("invalid database driver: %s (valid: %s, %s)", c.Database.Driver, DriverModernc, DriverCgo)
	}

	if c.Context.MaxCandidates <= 0 {
		return fmt.Errorf("context.max_candidates must be positive")
	}

	return nil
}
