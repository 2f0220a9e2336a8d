package storage

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Config holds connection settings for all three stores. An empty host
// disables the corresponding network store; the SQLite store is always
// on.
type Config struct {
	SQLitePath string
	ClickHouse ClickHouseConfig
	Postgres   PostgresConfig
}

// DefaultConfig returns a configuration with default local development
// settings.
func DefaultConfig() Config {
	return Config{
		SQLitePath: "observations.db",
		ClickHouse: ClickHouseConfig{
			Host:     "localhost",
			Port:     9000,
			Database: "mpc",
			User:     "default",
			Password: "",
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "tnodb_state",
			User:     "tnodb",
			Password: "tnodb",
		},
	}
}

// ConfigFromEnv starts from the defaults and applies MPC_SQLITE_PATH,
// CLICKHOUSE_* and POSTGRES_* overrides.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	setEnvString(&cfg.SQLitePath, "MPC_SQLITE_PATH")
	setEnvString(&cfg.ClickHouse.Host, "CLICKHOUSE_HOST")
	setEnvInt(&cfg.ClickHouse.Port, "CLICKHOUSE_PORT")
	setEnvString(&cfg.ClickHouse.Database, "CLICKHOUSE_DB")
	setEnvString(&cfg.ClickHouse.User, "CLICKHOUSE_USER")
	setEnvString(&cfg.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	setEnvString(&cfg.Postgres.Host, "POSTGRES_HOST")
	setEnvInt(&cfg.Postgres.Port, "POSTGRES_PORT")
	setEnvString(&cfg.Postgres.Database, "POSTGRES_DB")
	setEnvString(&cfg.Postgres.User, "POSTGRES_USER")
	setEnvString(&cfg.Postgres.Password, "POSTGRES_PASSWORD")
	return cfg
}

func setEnvString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setEnvInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Stores bundles the opened stores.
type Stores struct {
	Local *SQLiteDB     // SQLite for local review.
	PG    *PostgresDB   // PostgreSQL for survey state, nil when disabled.
	CH    *ClickHouseDB // ClickHouse for analytics, nil when disabled.
}

// Open opens the configured stores. SQLite always opens; PostgreSQL
// and ClickHouse open only when their host is set.
func Open(ctx context.Context, cfg Config) (*Stores, error) {
	local, err := OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	s := &Stores{Local: local}
	if cfg.Postgres.Host != "" {
		pg, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		s.PG = pg
	}
	if cfg.ClickHouse.Host != "" {
		ch, err := OpenClickHouse(ctx, cfg.ClickHouse)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		s.CH = ch
	}
	return s, nil
}

// Close closes every opened store.
func (s *Stores) Close() error {
	var first error
	if s.Local != nil {
		if err := s.Local.Close(); err != nil {
			first = fmt.Errorf("sqlite: %w", err)
		}
	}
	if s.PG != nil {
		s.PG.Close()
	}
	if s.CH != nil {
		if err := s.CH.Close(); err != nil && first == nil {
			first = fmt.Errorf("clickhouse: %w", err)
		}
	}
	return first
}

// CreateSchemas creates the schemas in the opened network stores. The
// SQLite schema is created on open.
func (s *Stores) CreateSchemas(ctx context.Context) error {
	if s.PG != nil {
		if err := s.PG.CreateSchema(ctx); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	if s.CH != nil {
		if err := s.CH.CreateSchema(ctx); err != nil {
			return fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return nil
}
