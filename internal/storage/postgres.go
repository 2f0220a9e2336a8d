package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresDB wraps a PostgreSQL connection pool. It holds the mutable
// survey state: the canonical observation set (one row per object and
// instant, latest line wins) and the name-alias groups.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresDB, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (d *PostgresDB) Close() {
	d.pool.Close()
}

// CreateSchema creates the PostgreSQL tables.
func (d *PostgresDB) CreateSchema(ctx context.Context) error {
	schema := `
	-- Canonical observation state: one row per object and instant.
	-- jd_key is the micro-day integer key the writer dedups on.
	CREATE TABLE IF NOT EXISTS observations (
		provisional_name    TEXT NOT NULL,
		jd_key              BIGINT NOT NULL,
		jd                  DOUBLE PRECISION NOT NULL,
		ra_deg              DOUBLE PRECISION NOT NULL,
		dec_deg             DOUBLE PRECISION NOT NULL,
		mag                 DOUBLE PRECISION,
		band                TEXT,
		observatory_code    TEXT NOT NULL,
		discovery           BOOLEAN NOT NULL DEFAULT FALSE,
		null_observation    BOOLEAN NOT NULL DEFAULT FALSE,
		rendered_line       TEXT NOT NULL,
		first_seen          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_seen           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (provisional_name, jd_key)
	);

	CREATE INDEX IF NOT EXISTS idx_observations_observatory ON observations(observatory_code);
	CREATE INDEX IF NOT EXISTS idx_observations_discovery ON observations(discovery) WHERE discovery;

	-- Name-alias groups: one row per alias, pointing at the group's
	-- canonical name.
	CREATE TABLE IF NOT EXISTS aliases (
		alias           TEXT PRIMARY KEY,
		canonical       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_aliases_canonical ON aliases(canonical);
	`
	if _, err := d.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// UpsertObservation inserts or replaces the observation for its
// (name, instant) key. The most recently written line wins, mirroring
// the codec writer's buffer semantics.
func (d *PostgresDB) UpsertObservation(ctx context.Context, jdKey int64, p InsertParams) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO observations (provisional_name, jd_key, jd, ra_deg, dec_deg,
			mag, band, observatory_code, discovery, null_observation, rendered_line)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (provisional_name, jd_key) DO UPDATE SET
			jd = EXCLUDED.jd,
			ra_deg = EXCLUDED.ra_deg,
			dec_deg = EXCLUDED.dec_deg,
			mag = EXCLUDED.mag,
			band = EXCLUDED.band,
			observatory_code = EXCLUDED.observatory_code,
			discovery = observations.discovery OR EXCLUDED.discovery,
			null_observation = EXCLUDED.null_observation,
			rendered_line = EXCLUDED.rendered_line,
			last_seen = NOW()
	`, p.ProvisionalName, jdKey, p.JD, p.RADeg, p.DecDeg, nullableFloat(p.Mag),
		p.Band, p.ObservatoryCode, p.Discovery, p.Null, p.RenderedLine)
	if err != nil {
		return fmt.Errorf("upsert observation: %w", err)
	}
	return nil
}

// ObservationCount returns the number of state rows for one object.
func (d *PostgresDB) ObservationCount(ctx context.Context, provisionalName string) (int, error) {
	var n int
	err := d.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM observations WHERE provisional_name = $1`,
		provisionalName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}

// ReplaceAliases rewrites the alias table from canonical-name groups,
// one batch statement per alias.
func (d *PostgresDB) ReplaceAliases(ctx context.Context, groups map[string][]string) error {
	batch := &pgx.Batch{}
	batch.Queue(`TRUNCATE aliases`)
	for canonical, aliases := range groups {
		for _, alias := range aliases {
			batch.Queue(`INSERT INTO aliases (alias, canonical) VALUES ($1, $2)
				ON CONFLICT (alias) DO UPDATE SET canonical = EXCLUDED.canonical`,
				alias, canonical)
		}
	}

	results := d.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("replace aliases: %w", err)
		}
	}
	return nil
}

// AliasesFor returns the alias group of name, canonical name first. An
// unknown name is its own group.
func (d *PostgresDB) AliasesFor(ctx context.Context, name string) ([]string, error) {
	var canonical string
	err := d.pool.QueryRow(ctx,
		`SELECT canonical FROM aliases WHERE alias = $1`, name).Scan(&canonical)
	if err == pgx.ErrNoRows {
		return []string{name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup alias: %w", err)
	}

	rows, err := d.pool.Query(ctx,
		`SELECT alias FROM aliases WHERE canonical = $1 ORDER BY alias`, canonical)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	group := []string{canonical}
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if alias != canonical {
			group = append(group, alias)
		}
	}
	return group, rows.Err()
}
