// Package config provides configuration loading and validation for the site server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/corpsite/internal/i18n"
)

// Defaults
const (
	DefaultPort           = 8080
	DefaultBaseURL        = "http://localhost:8080"
	DefaultJobsRevalidate = time.Hour
	DefaultJobsTimeout    = 10 * time.Second
)

// DefaultReservedPrefixes are paths the locale resolver never sees.
var DefaultReservedPrefixes = []string{
	"/api",
	"/_next",
	"/static",
	"/favicon.ico",
	"/health",
	"/metrics",
	"/sitemap.xml",
	"/robots.txt",
}

// Duration is a time.Duration that unmarshals from "1h30m" or a number of seconds.
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds")
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func durationPtr(d time.Duration) *Duration {
	v := Duration(d)
	return &v
}

// MarshalJSON writes the duration as a Go duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level      string `json:"level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	LogDir     string `json:"log_dir,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" validate:"gte=0"`
	MaxBackups int    `json:"max_backups,omitempty" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days,omitempty" validate:"gte=0"`
	Compress   bool   `json:"compress,omitempty"`
}

// Config represents the server configuration that can be loaded from a JSON
// file and overridden by environment variables. All fields are optional.
type Config struct {
	// Server
	Port    int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"` // Public origin used for canonical links and the sitemap

	// Locales
	DefaultLocale    string   `json:"default_locale,omitempty"`
	Locales          []string `json:"locales,omitempty" validate:"omitempty,dive,required,excludes=/"`
	ReservedPrefixes []string `json:"reserved_prefixes,omitempty" validate:"omitempty,dive,startswith=/"`

	// Job board
	JobsAPIURL     string   `json:"jobs_api_url,omitempty" validate:"omitempty,url"`
	JobsRevalidate *Duration `json:"jobs_revalidate,omitempty"` // nil means the default; 0 disables caching
	JobsTimeout    Duration `json:"jobs_timeout,omitempty" validate:"gte=0"`
	CacheURL       string   `json:"cache_url,omitempty"` // Optional valkey URL shared by replicas

	// Behavior
	Production bool          `json:"production,omitempty"`
	Logging    LoggingConfig `json:"logging"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Port:             DefaultPort,
		BaseURL:          DefaultBaseURL,
		DefaultLocale:    string(i18n.Korean),
		Locales:          []string{string(i18n.Korean), string(i18n.English)},
		ReservedPrefixes: append([]string(nil), DefaultReservedPrefixes...),
		JobsRevalidate:   durationPtr(DefaultJobsRevalidate),
		JobsTimeout:      Duration(DefaultJobsTimeout),
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds the effective configuration: defaults, then the optional JSON
// file at path, then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.JobsRevalidate != nil && *c.JobsRevalidate < 0 {
		return fmt.Errorf("config error: 'jobs_revalidate' must be non-negative")
	}
	if _, err := c.LocaleConfig(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LocaleConfig builds the immutable locale set described by the configuration.
func (c *Config) LocaleConfig() (i18n.Config, error) {
	def := i18n.Locale(c.DefaultLocale)
	if def == "" {
		def = i18n.Korean
	}
	if len(c.Locales) == 0 {
		return i18n.NewConfig(def, i18n.Korean, i18n.English)
	}
	locales := make([]i18n.Locale, 0, len(c.Locales))
	for _, l := range c.Locales {
		locales = append(locales, i18n.Locale(strings.TrimSpace(l)))
	}
	return i18n.NewConfig(def, locales...)
}

// Revalidate returns the job board revalidation window. An unset window
// is the default; an explicit zero disables caching.
func (c *Config) Revalidate() time.Duration {
	if c.JobsRevalidate == nil {
		return DefaultJobsRevalidate
	}
	return c.JobsRevalidate.Std()
}

// IsReserved reports whether path falls under one of the reserved prefixes.
// A prefix matches the exact path or any path continuing with "/".
func (c *Config) IsReserved(path string) bool {
	for _, prefix := range c.ReservedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply file values over built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.DefaultLocale == "" {
		result.DefaultLocale = defaults.DefaultLocale
	}
	if result.JobsAPIURL == "" {
		result.JobsAPIURL = defaults.JobsAPIURL
	}
	if result.CacheURL == "" {
		result.CacheURL = defaults.CacheURL
	}
	if result.Logging.Level == "" {
		result.Logging.Level = defaults.Logging.Level
	}
	if result.Logging.LogDir == "" {
		result.Logging.LogDir = defaults.Logging.LogDir
	}

	// Slices: use default if empty
	if len(result.Locales) == 0 {
		result.Locales = defaults.Locales
	}
	if len(result.ReservedPrefixes) == 0 {
		result.ReservedPrefixes = defaults.ReservedPrefixes
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.JobsRevalidate == nil {
		result.JobsRevalidate = defaults.JobsRevalidate
	}
	if result.JobsTimeout == 0 {
		result.JobsTimeout = defaults.JobsTimeout
	}
	if result.Logging.MaxSizeMB == 0 {
		result.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if result.Logging.MaxBackups == 0 {
		result.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if result.Logging.MaxAgeDays == 0 {
		result.Logging.MaxAgeDays = defaults.Logging.MaxAgeDays
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (env vars can still switch production on)

	return result
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := getenv("BASE_URL"); v != "" {
		c.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("DEFAULT_LOCALE"); v != "" {
		c.DefaultLocale = v
	}
	if v := getenv("LOCALES"); v != "" {
		c.Locales = splitList(v)
	}
	if v := getenv("RESERVED_PREFIXES"); v != "" {
		c.ReservedPrefixes = splitList(v)
	}
	if v := getenv("JOBS_API_URL"); v != "" {
		c.JobsAPIURL = v
	}
	if v := getenv("JOBS_REVALIDATE"); v != "" {
		if d, ok := parseDurationOrSeconds(v); ok {
			c.JobsRevalidate = durationPtr(d)
		}
	}
	if v := getenv("JOBS_TIMEOUT"); v != "" {
		if d, ok := parseDurationOrSeconds(v); ok {
			c.JobsTimeout = Duration(d)
		}
	}
	if v := getenv("CACHE_URL"); v != "" {
		c.CacheURL = v
	}
	if v := getenv("APP_ENV"); v != "" {
		c.Production = strings.EqualFold(v, "production")
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := getenv("LOG_DIR"); v != "" {
		c.Logging.LogDir = v
	}
}

func parseDurationOrSeconds(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
