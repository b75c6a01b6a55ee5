// Package config loads joke bot settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	yaml "go.yaml.in/yaml/v2"

	"github.com/dshills/jokegraph/jokebot"
)

// Joke providers.
const (
	ProviderCatalog   = "catalog"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
)

// History drivers. An empty driver disables the step journal.
const (
	HistoryMemory = "memory"
	HistorySQLite = "sqlite"
	HistoryMySQL  = "mysql"
)

var (
	providers      = []string{ProviderCatalog, ProviderAnthropic, ProviderOpenAI, ProviderGoogle}
	historyDrivers = []string{"", HistoryMemory, HistorySQLite, HistoryMySQL}
	logLevels      = []string{"debug", "info", "warn", "error"}
	logFormats     = []string{"console", "json"}
)

// Config holds every setting of a joke bot session.
type Config struct {
	// MaxSteps bounds the number of node invocations in one session.
	MaxSteps int    `yaml:"max_steps"`
	Language string `yaml:"language"`
	Category string `yaml:"category"`

	Provider ProviderConfig `yaml:"provider"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	History  HistoryConfig  `yaml:"history"`
}

// ProviderConfig selects where jokes come from.
type ProviderConfig struct {
	Name   string `yaml:"name"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// LogConfig configures diagnostics logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// Events also logs engine events (steps, routing) at debug level.
	Events bool `yaml:"events"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// TracingConfig configures OTLP trace export. An empty endpoint disables it.
type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// HistoryConfig configures the step journal.
type HistoryConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Default returns the reference settings.
func Default() Config {
	return Config{
		MaxSteps: 100,
		Language: jokebot.DefaultLanguage,
		Category: jokebot.DefaultCategory,
		Provider: ProviderConfig{Name: ProviderCatalog},
		Log:      LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from JOKEBOT_* variables and fills a missing
// API key from the provider's conventional variable.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"JOKEBOT_LANGUAGE":       &c.Language,
		"JOKEBOT_CATEGORY":       &c.Category,
		"JOKEBOT_PROVIDER":       &c.Provider.Name,
		"JOKEBOT_MODEL":          &c.Provider.Model,
		"JOKEBOT_API_KEY":        &c.Provider.APIKey,
		"JOKEBOT_LOG_LEVEL":      &c.Log.Level,
		"JOKEBOT_LOG_FORMAT":     &c.Log.Format,
		"JOKEBOT_METRICS_ADDR":   &c.Metrics.Addr,
		"JOKEBOT_OTLP_ENDPOINT":  &c.Tracing.OTLPEndpoint,
		"JOKEBOT_HISTORY_DRIVER": &c.History.Driver,
		"JOKEBOT_HISTORY_DSN":    &c.History.DSN,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	if v, ok := lookup("JOKEBOT_MAX_STEPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JOKEBOT_MAX_STEPS: %w", err)
		}
		c.MaxSteps = n
	}
	if v, ok := lookup("JOKEBOT_LOG_EVENTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JOKEBOT_LOG_EVENTS: %w", err)
		}
		c.Log.Events = b
	}

	if c.Provider.APIKey == "" {
		if name := APIKeyEnv(c.Provider.Name); name != "" {
			c.Provider.APIKey, _ = lookup(name)
		}
	}
	return nil
}

// APIKeyEnv returns the environment variable conventionally holding the
// provider's API key, or "" for providers without one.
func APIKeyEnv(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps))
	}
	if !slices.Contains(jokebot.Languages, c.Language) {
		errs = append(errs, fmt.Errorf("unknown language %q (want one of %v)", c.Language, jokebot.Languages))
	}
	if !slices.Contains(jokebot.Categories, c.Category) {
		errs = append(errs, fmt.Errorf("unknown category %q (want one of %v)", c.Category, jokebot.Categories))
	}
	if !slices.Contains(providers, c.Provider.Name) {
		errs = append(errs, fmt.Errorf("unknown provider %q (want one of %v)", c.Provider.Name, providers))
	} else if c.Provider.Name != ProviderCatalog && c.Provider.APIKey == "" {
		errs = append(errs, fmt.Errorf("provider %s needs an API key (set %s)", c.Provider.Name, APIKeyEnv(c.Provider.Name)))
	}
	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if !slices.Contains(historyDrivers, c.History.Driver) {
		errs = append(errs, fmt.Errorf("unknown history driver %q", c.History.Driver))
	} else if (c.History.Driver == HistorySQLite || c.History.Driver == HistoryMySQL) && c.History.DSN == "" {
		errs = append(errs, fmt.Errorf("history driver %s needs a dsn", c.History.Driver))
	}
	return errors.Join(errs...)
}
