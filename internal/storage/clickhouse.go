package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/ijiraq/MainBeltComets/internal/mpctime"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// ClickHouseDB wraps a ClickHouse connection for measurement
// analytics: every parsed line lands here append-only.
type ClickHouseDB struct {
	conn driver.Conn
}

// Conn returns the underlying ClickHouse connection for direct queries.
func (d *ClickHouseDB) Conn() driver.Conn {
	return d.conn
}

// OpenClickHouse opens a connection to ClickHouse.
func OpenClickHouse(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (d *ClickHouseDB) Close() error {
	return d.conn.Close()
}

// CreateSchema creates the ClickHouse tables.
func (d *ClickHouseDB) CreateSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS measurements (
		provisional_name LowCardinality(String),
		observed_at      DateTime64(3),
		jd               Float64,
		mjd              Float64,
		ra_deg           Float64,
		dec_deg          Float64,
		mag              Nullable(Float64),
		band             LowCardinality(String),
		observatory_code LowCardinality(String),
		discovery        UInt8,
		null_observation UInt8,
		comment_kind     LowCardinality(String),
		frame            String,
		raw_line         String,
		created_at       DateTime64(3) DEFAULT now64(3)
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(observed_at)
	ORDER BY (provisional_name, observed_at)
	SETTINGS index_granularity = 8192`

	if err := d.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertObservations stores a batch of parsed records.
func (d *ClickHouseDB) InsertObservations(ctx context.Context, batch []InsertParams) error {
	if len(batch) == 0 {
		return nil
	}

	b, err := d.conn.PrepareBatch(ctx, `
		INSERT INTO measurements (provisional_name, observed_at, jd, mjd, ra_deg,
			dec_deg, mag, band, observatory_code, discovery, null_observation,
			comment_kind, frame, raw_line)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range batch {
		t := mpctime.FromJD(p.JD, 0)
		err = b.Append(p.ProvisionalName, t.Time(), p.JD, t.MJD(), p.RADeg,
			p.DecDeg, p.Mag, p.Band, p.ObservatoryCode, boolToUInt8(p.Discovery),
			boolToUInt8(p.Null), p.CommentKind, p.Frame, p.RawLine)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := b.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// CountByObservatory returns per-observatory measurement counts.
func (d *ClickHouseDB) CountByObservatory(ctx context.Context) (map[string]uint64, error) {
	rows, err := d.conn.Query(ctx,
		`SELECT observatory_code, count() FROM measurements GROUP BY observatory_code`)
	if err != nil {
		return nil, fmt.Errorf("count by observatory: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var code string
		var n uint64
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[code] = n
	}
	return counts, rows.Err()
}

// CountByObject returns per-object measurement counts for the busiest
// objects, highest first.
func (d *ClickHouseDB) CountByObject(ctx context.Context, limit int) (map[string]uint64, error) {
	rows, err := d.conn.Query(ctx, `
		SELECT provisional_name, count() AS n FROM measurements
		GROUP BY provisional_name ORDER BY n DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("count by object: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var name string
		var n uint64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
