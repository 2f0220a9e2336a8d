// Package storage provides persistent storage for parsed observation
// records: a local SQLite review store, a PostgreSQL state store and a
// ClickHouse analytics store.
package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/ijiraq/MainBeltComets/internal/mpc"
)

// ObservationRow is a stored observation record.
type ObservationRow struct {
	ID              int64
	ProvisionalName string
	JD              float64
	RADeg           float64
	DecDeg          float64
	Mag             sql.NullFloat64
	Band            string
	ObservatoryCode string
	Discovery       bool
	Null            bool
	CommentKind     string
	Frame           string
	RawLine         string
	RenderedLine    string
}

// InsertParams contains the fields for storing one observation.
type InsertParams struct {
	ProvisionalName string
	JD              float64
	RADeg           float64
	DecDeg          float64
	Mag             *float64
	Band            string
	ObservatoryCode string
	Discovery       bool
	Null            bool
	CommentKind     string
	Frame           string
	RawLine         string
	RenderedLine    string
}

// ParamsFromObservation flattens a parsed record for storage. rawLine
// is the line the record was parsed from, kept verbatim for replay.
func ParamsFromObservation(obs *mpc.Observation, rawLine string) InsertParams {
	p := InsertParams{
		ProvisionalName: obs.ProvisionalName,
		JD:              obs.Date().JD,
		RADeg:           obs.RA(),
		DecDeg:          obs.Dec(),
		Mag:             obs.Mag(),
		Band:            obs.Band,
		ObservatoryCode: obs.ObservatoryCode,
		Discovery:       obs.Discovery.IsDiscovery,
		Null:            obs.Null.IsNull,
		RawLine:         rawLine,
		RenderedLine:    obs.ToString(),
	}
	if obs.Comment != nil {
		p.CommentKind = commentKind(obs.Comment)
		p.Frame = obs.Comment.Frame
	}
	return p
}

func commentKind(c *mpc.Comment) string {
	switch {
	case c.IsTNOdb():
		return "tnodb"
	case c.Version == mpc.VersionOSSOS:
		return "ossos"
	case c.Version == mpc.VersionCFEPS:
		return "cfeps"
	default:
		return "raw"
	}
}

// SQLiteDB wraps a SQLite database for local observation review.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (d *SQLiteDB) Close() error {
	return d.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		provisional_name TEXT NOT NULL,
		jd REAL NOT NULL,
		ra_deg REAL NOT NULL,
		dec_deg REAL NOT NULL,
		mag REAL,
		band TEXT,
		observatory_code TEXT NOT NULL,
		discovery INTEGER NOT NULL DEFAULT 0,
		null_observation INTEGER NOT NULL DEFAULT 0,
		comment_kind TEXT,
		frame TEXT,
		raw_line TEXT NOT NULL,
		rendered_line TEXT NOT NULL,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_observations_name ON observations(provisional_name);
	CREATE INDEX IF NOT EXISTS idx_observations_jd ON observations(jd);
	CREATE INDEX IF NOT EXISTS idx_observations_observatory ON observations(observatory_code);
	`
	_, err := db.Exec(schema)
	return err
}

// Insert stores one observation and returns its row id.
func (d *SQLiteDB) Insert(p InsertParams) (int64, error) {
	result, err := d.db.Exec(`
		INSERT INTO observations (provisional_name, jd, ra_deg, dec_deg, mag, band,
			observatory_code, discovery, null_observation, comment_kind, frame,
			raw_line, rendered_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ProvisionalName, p.JD, p.RADeg, p.DecDeg, nullableFloat(p.Mag), p.Band,
		p.ObservatoryCode, p.Discovery, p.Null, p.CommentKind, p.Frame,
		p.RawLine, p.RenderedLine)
	if err != nil {
		return 0, fmt.Errorf("insert observation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// QueryParams contains filtering options for querying observations.
type QueryParams struct {
	ProvisionalName string
	ObservatoryCode string
	DiscoveryOnly   bool
	MinJD           float64
	MaxJD           float64
	Limit           int
}

// Query returns observations matching the given filters, newest first.
func (d *SQLiteDB) Query(p QueryParams) ([]ObservationRow, error) {
	var conditions []string
	var args []any

	if p.ProvisionalName != "" {
		conditions = append(conditions, "provisional_name = ?")
		args = append(args, p.ProvisionalName)
	}
	if p.ObservatoryCode != "" {
		conditions = append(conditions, "observatory_code = ?")
		args = append(args, p.ObservatoryCode)
	}
	if p.DiscoveryOnly {
		conditions = append(conditions, "discovery = 1")
	}
	if p.MinJD > 0 {
		conditions = append(conditions, "jd >= ?")
		args = append(args, p.MinJD)
	}
	if p.MaxJD > 0 {
		conditions = append(conditions, "jd <= ?")
		args = append(args, p.MaxJD)
	}

	query := `SELECT id, provisional_name, jd, ra_deg, dec_deg, mag, band,
		observatory_code, discovery, null_observation, comment_kind, frame,
		raw_line, rendered_line FROM observations`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY jd DESC"
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	var observations []ObservationRow
	for rows.Next() {
		var row ObservationRow
		if err := rows.Scan(&row.ID, &row.ProvisionalName, &row.JD, &row.RADeg,
			&row.DecDeg, &row.Mag, &row.Band, &row.ObservatoryCode, &row.Discovery,
			&row.Null, &row.CommentKind, &row.Frame, &row.RawLine,
			&row.RenderedLine); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		observations = append(observations, row)
	}
	return observations, rows.Err()
}

// CountByObservatory returns the number of stored observations per
// observatory code.
func (d *SQLiteDB) CountByObservatory() (map[string]int, error) {
	rows, err := d.db.Query(
		`SELECT observatory_code, COUNT(*) FROM observations GROUP BY observatory_code`)
	if err != nil {
		return nil, fmt.Errorf("count by observatory: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[code] = n
	}
	return counts, rows.Err()
}

// Count returns the total number of stored observations.
func (d *SQLiteDB) Count() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}
