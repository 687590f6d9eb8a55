package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 5
logging:
  development: true
  level: debug
site:
  title: Test Domains
render:
  route: thanks
  pattern: /thanks/:site/
screenshot:
  default_url: https://img.example.com/default.png
store:
  backend: postgres
postgres:
  dsn: postgres://localhost/dusty
  table: submissions_mirror
  max_conns: 4
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if got := cfg.RequestTimeout(); got != 5*time.Second {
		t.Fatalf("expected request timeout 5s, got %v", got)
	}
	if !cfg.Logging.Development || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging overrides to apply: %+v", cfg.Logging)
	}
	if cfg.Site.Title != "Test Domains" {
		t.Fatalf("expected site title override, got %q", cfg.Site.Title)
	}
	if cfg.Store.Backend != BackendPostgres || cfg.Postgres.Table != "submissions_mirror" || cfg.Postgres.MaxConns != 4 {
		t.Fatalf("expected postgres overrides to apply: %+v %+v", cfg.Store, cfg.Postgres)
	}
	if cfg.Screenshot.DefaultURL != "https://img.example.com/default.png" {
		t.Fatalf("expected default screenshot override, got %q", cfg.Screenshot.DefaultURL)
	}
}

func TestLoadBindsPlatformCredentials(t *testing.T) {
	t.Setenv("AIRTABLE_BASE_ID", "appBASE")
	t.Setenv("AIRTABLE_API_KEY", "keySECRET")
	t.Setenv("PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Airtable.BaseID != "appBASE" || cfg.Airtable.APIKey != "keySECRET" {
		t.Fatalf("expected airtable credentials from env, got %+v", cfg.Airtable)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected PORT to override server.port, got %d", cfg.Server.Port)
	}
	if cfg.Airtable.Table != "Submissions" || cfg.Airtable.BaseURL != "https://api.airtable.com" {
		t.Fatalf("expected airtable defaults, got %+v", cfg.Airtable)
	}
	if got := cfg.AirtableTimeout(); got != 10*time.Second {
		t.Fatalf("expected airtable timeout 10s, got %v", got)
	}
	if cfg.Render.Route != "thanks" || cfg.Render.Pattern != "/thanks/:site/" {
		t.Fatalf("expected render defaults, got %+v", cfg.Render)
	}
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	t.Setenv("AIRTABLE_BASE_ID", "appPLATFORM")
	t.Setenv("THANKS_AIRTABLE_BASE_ID", "appPREFIXED")
	t.Setenv("AIRTABLE_API_KEY", "key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Airtable.BaseID != "appPREFIXED" {
		t.Fatalf("expected prefixed env to win, got %q", cfg.Airtable.BaseID)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("AIRTABLE_BASE_ID", "")
	t.Setenv("AIRTABLE_API_KEY", "")
	t.Setenv("THANKS_AIRTABLE_BASE_ID", "")
	t.Setenv("THANKS_AIRTABLE_API_KEY", "")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "airtable.base_id") {
		t.Fatalf("expected airtable credential error, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:   ServerConfig{Port: 8080, RequestTimeoutSeconds: 30},
		Render:   RenderConfig{Route: "thanks", Pattern: "/thanks/:site/"},
		Store:    StoreConfig{Backend: BackendMemory},
		Postgres: PostgresConfig{Table: "submissions"},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid request timeout",
			cfg: func() Config {
				c := base
				c.Server.RequestTimeoutSeconds = 0
				return c
			}(),
			want: "server.request_timeout_seconds",
		},
		{
			name: "relative pattern",
			cfg: func() Config {
				c := base
				c.Render.Pattern = "thanks/:site/"
				return c
			}(),
			want: "render.pattern",
		},
		{
			name: "airtable missing key",
			cfg: func() Config {
				c := base
				c.Store.Backend = BackendAirtable
				c.Airtable.BaseID = "app"
				c.Airtable.TimeoutSeconds = 10
				return c
			}(),
			want: "airtable.api_key",
		},
		{
			name: "airtable invalid timeout",
			cfg: func() Config {
				c := base
				c.Store.Backend = BackendAirtable
				c.Airtable = AirtableConfig{BaseID: "app", APIKey: "key"}
				return c
			}(),
			want: "airtable.timeout_seconds",
		},
		{
			name: "postgres missing dsn",
			cfg: func() Config {
				c := base
				c.Store.Backend = BackendPostgres
				return c
			}(),
			want: "postgres.dsn",
		},
		{
			name: "postgres invalid table",
			cfg: func() Config {
				c := base
				c.Store.Backend = BackendPostgres
				c.Postgres = PostgresConfig{DSN: "postgres://localhost/db", Table: "drop table;"}
				return c
			}(),
			want: "postgres.table",
		},
		{
			name: "sqlite missing path",
			cfg: func() Config {
				c := base
				c.Store.Backend = BackendSQLite
				return c
			}(),
			want: "sqlite.path",
		},
		{
			name: "unknown backend",
			cfg: func() Config {
				c := base
				c.Store.Backend = "redis"
				return c
			}(),
			want: "store.backend",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to validate, got %v", err)
	}
}
