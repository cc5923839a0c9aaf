package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.BasePath != "/training" {
		t.Errorf("expected base path /training, got %s", cfg.Server.BasePath)
	}
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("expected max_conns 15, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Cache.DashboardTTL != 30*time.Second {
		t.Errorf("expected dashboard ttl 30s, got %v", cfg.Cache.DashboardTTL)
	}
	if cfg.Auth.LoginURL != "/accounts/login/" {
		t.Errorf("expected login url /accounts/login/, got %s", cfg.Auth.LoginURL)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
postgres:
  max_conns: 20
logging:
  level: "debug"
cache:
  dashboard_ttl: 2m
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.CORSOrigin != "http://example.com" {
		t.Errorf("expected cors http://example.com, got %s", cfg.Server.CORSOrigin)
	}
	if cfg.Postgres.MaxConns != 20 {
		t.Errorf("expected max_conns 20, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Cache.DashboardTTL != 2*time.Minute {
		t.Errorf("expected dashboard ttl 2m, got %v", cfg.Cache.DashboardTTL)
	}
	// Unchanged fields keep defaults
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("expected default NATS URL, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	err := loadYAML(&cfg, "/nonexistent/path.yaml")
	if err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(yamlPath, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TRAINING_PORT", "7070")
	t.Setenv("DATABASE_URL", "postgres://test:test@db:5432/test")
	t.Setenv("TRAINING_PG_MAX_CONNS", "25")
	t.Setenv("TRAINING_LOG_LEVEL", "warn")
	t.Setenv("TRAINING_DASHBOARD_TTL", "1m")
	t.Setenv("TRAINING_JWT_SECRET", "s3cret")
	t.Setenv("TRAINING_PG_AUTO_MIGRATE", "false")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Postgres.DSN != "postgres://test:test@db:5432/test" {
		t.Errorf("expected test DSN, got %s", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxConns != 25 {
		t.Errorf("expected max_conns 25, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Logging.Level)
	}
	if cfg.Cache.DashboardTTL != time.Minute {
		t.Errorf("expected dashboard ttl 1m, got %v", cfg.Cache.DashboardTTL)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("expected jwt secret override, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Postgres.AutoMigrate {
		t.Error("expected auto migrate disabled")
	}
}

func TestEnvEmptyNATSDisables(t *testing.T) {
	cfg := Defaults()
	t.Setenv("NATS_URL", "")
	loadEnv(&cfg)
	if cfg.NATS.URL != "" {
		t.Errorf("expected NATS disabled, got %s", cfg.NATS.URL)
	}
}

func TestEnvMalformedIgnored(t *testing.T) {
	cfg := Defaults()
	t.Setenv("TRAINING_PG_MAX_CONNS", "many")
	t.Setenv("TRAINING_DASHBOARD_TTL", "soon")
	loadEnv(&cfg)
	if cfg.Postgres.MaxConns != 15 {
		t.Errorf("malformed int should be ignored, got %d", cfg.Postgres.MaxConns)
	}
	if cfg.Cache.DashboardTTL != 30*time.Second {
		t.Errorf("malformed duration should be ignored, got %v", cfg.Cache.DashboardTTL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "TRAINING_TEST_DOTENV_ONLY=from-file\nTRAINING_TEST_DOTENV_BOTH=from-file\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRAINING_TEST_DOTENV_BOTH", "from-env")
	// Register cleanup for the variable the file introduces.
	t.Setenv("TRAINING_TEST_DOTENV_ONLY", "")
	if err := os.Unsetenv("TRAINING_TEST_DOTENV_ONLY"); err != nil {
		t.Fatal(err)
	}

	if err := loadDotEnv(envPath); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("TRAINING_TEST_DOTENV_ONLY"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("TRAINING_TEST_DOTENV_BOTH"); got != "from-env" {
		t.Errorf("real env must win over .env, got %q", got)
	}

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should not error, got %v", err)
	}
}

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{
			name:   "empty port",
			modify: func(c *Config) { c.Server.Port = "" },
			errMsg: "server.port is required",
		},
		{
			name:   "relative base path",
			modify: func(c *Config) { c.Server.BasePath = "training" },
			errMsg: "server.base_path must start with /",
		},
		{
			name:   "empty DSN",
			modify: func(c *Config) { c.Postgres.DSN = "" },
			errMsg: "postgres.dsn is required",
		},
		{
			name:   "zero max_conns",
			modify: func(c *Config) { c.Postgres.MaxConns = 0 },
			errMsg: "postgres.max_conns must be >= 1",
		},
		{
			name:   "min above max",
			modify: func(c *Config) { c.Postgres.MinConns = 50 },
			errMsg: "postgres.min_conns must not exceed max_conns",
		},
		{
			name:   "empty jwt secret",
			modify: func(c *Config) { c.Auth.JWTSecret = "" },
			errMsg: "auth.jwt_secret is required",
		},
		{
			name:   "negative dashboard ttl",
			modify: func(c *Config) { c.Cache.DashboardTTL = -time.Second },
			errMsg: "cache.dashboard_ttl must not be negative",
		},
		{
			name:   "zero export burst",
			modify: func(c *Config) { c.Rate.ExportBurst = 0 },
			errMsg: "rate.export_burst must be >= 1",
		},
		{
			name:   "zero export concurrency",
			modify: func(c *Config) { c.Rate.ExportConcurrent = 0 },
			errMsg: "rate.export_concurrent must be >= 1",
		},
		{
			name:   "sample rate above one",
			modify: func(c *Config) { c.Telemetry.SampleRate = 1.5 },
			errMsg: "telemetry.sample_rate must be within [0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := validate(&cfg)
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.errMsg)
			}
			if err.Error() != tt.errMsg {
				t.Errorf("expected %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidateNATSOptional(t *testing.T) {
	cfg := Defaults()
	cfg.NATS.URL = ""
	if err := validate(&cfg); err != nil {
		t.Errorf("empty NATS URL should be allowed, got %v", err)
	}
}

func TestValidateAcceptsSecretFile(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.JWTSecret = ""
	cfg.Auth.SecretFile = "/run/secrets/jwt"
	if err := validate(&cfg); err != nil {
		t.Fatalf("expected secret file to satisfy auth, got %v", err)
	}
}
