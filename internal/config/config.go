// Package config loads and validates function configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends understood by the application.
const (
	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Site       SiteConfig       `mapstructure:"site"`
	Render     RenderConfig     `mapstructure:"render"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	Store      StoreConfig      `mapstructure:"store"`
	Airtable   AirtableConfig   `mapstructure:"airtable"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
}

// ServerConfig controls HTTP server behavior when serving locally or in a container.
type ServerConfig struct {
	Port                  int `mapstructure:"port"`
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// SiteConfig is exposed to templates as global data.
type SiteConfig struct {
	Title string `mapstructure:"title"`
	URL   string `mapstructure:"url"`
}

// RenderConfig names the serverless route and its permalink pattern.
type RenderConfig struct {
	Route   string `mapstructure:"route"`
	Pattern string `mapstructure:"pattern"`
}

// ScreenshotConfig controls screenshot resolution.
type ScreenshotConfig struct {
	DefaultURL string `mapstructure:"default_url"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// AirtableConfig holds the Airtable REST API settings.
type AirtableConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	BaseID         string `mapstructure:"base_id"`
	APIKey         string `mapstructure:"api_key"`
	Table          string `mapstructure:"table"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PostgresConfig controls access to a Postgres mirror of the submissions table.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// SQLiteConfig points at a local SQLite mirror used for offline development.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// Load builds a Config from an optional .env file, disk, and the environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("THANKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindPlatformEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
	v.SetDefault("site.title", "Dusty Domains")
	v.SetDefault("site.url", "https://dustydomains.netlify.app")
	v.SetDefault("render.route", "thanks")
	v.SetDefault("render.pattern", "/thanks/:site/")
	v.SetDefault("screenshot.default_url", "")
	v.SetDefault("store.backend", BackendAirtable)
	v.SetDefault("airtable.base_url", "https://api.airtable.com")
	v.SetDefault("airtable.base_id", "")
	v.SetDefault("airtable.api_key", "")
	v.SetDefault("airtable.table", "Submissions")
	v.SetDefault("airtable.timeout_seconds", 10)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "submissions")
	v.SetDefault("postgres.max_conns", 2)
	v.SetDefault("sqlite.path", "dusty-domains.db")
}

// bindPlatformEnv maps the unprefixed names set by the hosting platform.
func bindPlatformEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"airtable.base_id": {"THANKS_AIRTABLE_BASE_ID", "AIRTABLE_BASE_ID"},
		"airtable.api_key": {"THANKS_AIRTABLE_API_KEY", "AIRTABLE_API_KEY"},
		"server.port":      {"THANKS_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Render.Route == "" || !strings.HasPrefix(c.Render.Pattern, "/") {
		return fmt.Errorf("render.route and render.pattern (starting with /) are required")
	}
	switch c.Store.Backend {
	case BackendAirtable:
		if c.Airtable.BaseID == "" || c.Airtable.APIKey == "" {
			return fmt.Errorf("airtable.base_id and airtable.api_key must be set for the airtable backend")
		}
		if c.Airtable.TimeoutSeconds <= 0 {
			return fmt.Errorf("airtable.timeout_seconds must be > 0")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn must be set for the postgres backend")
		}
		if !validTableName.MatchString(c.Postgres.Table) {
			return fmt.Errorf("postgres.table %q is not a valid table name", c.Postgres.Table)
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path must be set for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}
	return nil
}

// RequestTimeout returns the server request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// AirtableTimeout returns the outbound Airtable call timeout as a duration.
func (c Config) AirtableTimeout() time.Duration {
	return time.Duration(c.Airtable.TimeoutSeconds) * time.Second
}
