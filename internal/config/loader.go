package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "training.yaml"

// DefaultEnvFile is the dotenv file loaded before the environment overlay.
const DefaultEnvFile = ".env"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML and .env files are optional; missing files are not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("config dotenv: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadDotEnv populates unset environment variables from path.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TRAINING_PORT")
	setString(&cfg.Server.CORSOrigin, "TRAINING_CORS_ORIGIN")
	setString(&cfg.Server.BasePath, "TRAINING_BASE_PATH")
	setDuration(&cfg.Server.RequestTimeout, "TRAINING_REQUEST_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "TRAINING_SHUTDOWN_TIMEOUT")
	setInt64(&cfg.Server.MaxFormBytes, "TRAINING_MAX_FORM_BYTES")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "TRAINING_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "TRAINING_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "TRAINING_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "TRAINING_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "TRAINING_PG_HEALTH_CHECK")
	setBool(&cfg.Postgres.AutoMigrate, "TRAINING_PG_AUTO_MIGRATE")
	setOptionalString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Logging.Level, "TRAINING_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TRAINING_LOG_SERVICE")
	setString(&cfg.Auth.JWTSecret, "TRAINING_JWT_SECRET")
	setString(&cfg.Auth.SecretFile, "TRAINING_JWT_SECRET_FILE")
	setString(&cfg.Auth.Issuer, "TRAINING_JWT_ISSUER")
	setString(&cfg.Auth.CookieName, "TRAINING_SESSION_COOKIE")
	setString(&cfg.Auth.LoginURL, "TRAINING_LOGIN_URL")
	setDuration(&cfg.Auth.TokenTTL, "TRAINING_TOKEN_TTL")
	setInt64(&cfg.Cache.MaxCostBytes, "TRAINING_CACHE_MAX_COST")
	setDuration(&cfg.Cache.DashboardTTL, "TRAINING_DASHBOARD_TTL")
	setFloat64(&cfg.Rate.ExportPerSecond, "TRAINING_EXPORT_RPS")
	setInt(&cfg.Rate.ExportBurst, "TRAINING_EXPORT_BURST")
	setInt(&cfg.Rate.ExportConcurrent, "TRAINING_EXPORT_CONCURRENT")
	setDuration(&cfg.Rate.ExportWait, "TRAINING_EXPORT_WAIT")
	setDuration(&cfg.Rate.CleanupInterval, "TRAINING_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "TRAINING_RATE_MAX_IDLE_TIME")
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Telemetry.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.Telemetry.Insecure, "TRAINING_OTEL_INSECURE")
	setFloat64(&cfg.Telemetry.SampleRate, "TRAINING_OTEL_SAMPLE_RATE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if !strings.HasPrefix(cfg.Server.BasePath, "/") {
		return errors.New("server.base_path must start with /")
	}
	if cfg.Server.MaxFormBytes < 1 {
		return errors.New("server.max_form_bytes must be >= 1")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Postgres.MinConns > cfg.Postgres.MaxConns {
		return errors.New("postgres.min_conns must not exceed max_conns")
	}
	if cfg.Auth.JWTSecret == "" && cfg.Auth.SecretFile == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if cfg.Auth.LoginURL == "" {
		return errors.New("auth.login_url is required")
	}
	if cfg.Cache.MaxCostBytes < 1 {
		return errors.New("cache.max_cost_bytes must be >= 1")
	}
	if cfg.Cache.DashboardTTL < 0 {
		return errors.New("cache.dashboard_ttl must not be negative")
	}
	if cfg.Rate.ExportPerSecond <= 0 {
		return errors.New("rate.export_per_second must be > 0")
	}
	if cfg.Rate.ExportBurst < 1 {
		return errors.New("rate.export_burst must be >= 1")
	}
	if cfg.Rate.ExportConcurrent < 1 {
		return errors.New("rate.export_concurrent must be >= 1")
	}
	if cfg.Telemetry.SampleRate < 0 || cfg.Telemetry.SampleRate > 1 {
		return errors.New("telemetry.sample_rate must be within [0, 1]")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setOptionalString also honours an explicitly empty value, which turns the
// feature off.
func setOptionalString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
