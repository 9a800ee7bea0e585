// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"eventlog/internal/db"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080). When empty, ":"+Port is used.
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// Port is the bare listen port, kept for platforms that only inject PORT.
	Port string `mapstructure:"PORT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// DBDriver selects the database/sql driver: "pgx" (default) or "sqlite".
	DBDriver string `mapstructure:"DB_DRIVER"`
	// DatabaseURL is the DSN. For pgx it takes precedence over the PG* fields below.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	PGHost      string `mapstructure:"PGHOST"`
	PGPort      string `mapstructure:"PGPORT"`
	PGUser      string `mapstructure:"PGUSER"`
	PGPassword  string `mapstructure:"PGPASSWORD"`
	PGDatabase  string `mapstructure:"PGDATABASE"`
	PGSSLMode   string `mapstructure:"PGSSLMODE"`
	// DBMaxOpenConns caps the pool size; 0 means unlimited (database/sql default).
	DBMaxOpenConns int `mapstructure:"DB_MAX_OPEN_CONNS"`
	// DBMaxIdleConns is the number of idle connections kept in the pool.
	DBMaxIdleConns int `mapstructure:"DB_MAX_IDLE_CONNS"`
	// DBConnMaxLifetime is a duration string (e.g. "30m"); empty or invalid means no limit.
	DBConnMaxLifetime string `mapstructure:"DB_CONN_MAX_LIFETIME"`
	// DBApplySchema creates the events table at startup when it does not exist.
	DBApplySchema bool `mapstructure:"DB_APPLY_SCHEMA"`

	// CORSOrigins is a comma-separated allow list; empty allows every origin.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	// OTLPEndpoint is the OpenTelemetry collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext gRPC even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is reported as service.name on traces, metrics and logs.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. When set, recorded events are published.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EventsKafkaTopic is the topic recorded events are published to (default eventlog-events).
	EventsKafkaTopic string `mapstructure:"EVENTS_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// Worker-only: Loki URL to push events to (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`

	// ShutdownTimeout bounds graceful HTTP shutdown (e.g. "10s").
	ShutdownTimeout string `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PGHOST", "")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("PGUSER", "")
	v.SetDefault("PGPASSWORD", "")
	v.SetDefault("PGDATABASE", "")
	v.SetDefault("PGSSLMODE", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DB_APPLY_SCHEMA", true)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "eventlog")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EVENTS_KAFKA_TOPIC", "eventlog-events")
	v.SetDefault("KAFKA_GROUP_ID", "eventlog-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		if cfg.Port == "" {
			return nil, errors.New("config: HTTP_ADDR or PORT must be set")
		}
		cfg.HTTPAddr = ":" + cfg.Port
	}

	if _, err := db.DialectFor(cfg.DBDriver); err != nil {
		return nil, fmt.Errorf("config: DB_DRIVER must be %q or %q: %w", db.DriverPostgres, db.DriverSQLite, err)
	}

	if cfg.DBMaxOpenConns < 0 || cfg.DBMaxIdleConns < 0 {
		return nil, errors.New("config: DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS must not be negative")
	}

	return &cfg, nil
}

// DSN returns the connection string for DBDriver. DATABASE_URL wins; otherwise a postgres URL is
// composed from the PG* fields. Returns "" when nothing is configured.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" || c.DBDriver == db.DriverSQLite {
		return c.DatabaseURL
	}
	if c.PGHost == "" {
		return ""
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.PGHost, c.PGPort),
		Path:   "/" + c.PGDatabase,
	}
	if c.PGUser != "" {
		if c.PGPassword != "" {
			u.User = url.UserPassword(c.PGUser, c.PGPassword)
		} else {
			u.User = url.User(c.PGUser)
		}
	}
	if c.PGSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{c.PGSSLMode}}.Encode()
	}
	return u.String()
}

// ConnMaxLifetime parses DBConnMaxLifetime. Returns 0 (no limit) if unset or invalid.
func (c *Config) ConnMaxLifetime() time.Duration {
	d, err := time.ParseDuration(c.DBConnMaxLifetime)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// ShutdownGrace parses ShutdownTimeout. Returns 10s if unset or invalid.
func (c *Config) ShutdownGrace() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event publishing is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

// CORSOriginsList returns the CORS allow list; nil means all origins are allowed.
func (c *Config) CORSOriginsList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSOrigins)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
