package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

const (
	kvTable        = "tally_kv"
	sqliteFileName = "go-tally.db"
	sqlPingTimeout = 5 * time.Second
)

// SQLStore keeps slots in a single table of a SQL database.
type SQLStore struct {
	db      *sql.DB
	backend string
}

// sqlConnString resolves the connection string for a SQL backend. SQLite
// falls back to a database file inside the data directory.
func sqlConnString(opts Options) string {
	if opts.Backend == BackendSQLite && opts.DSN == "" {
		return filepath.Join(opts.DataDir, sqliteFileName)
	}
	return opts.DSN
}

func driverFor(backend string) (string, error) {
	switch backend {
	case BackendSQLite:
		return "sqlite", nil
	case BackendMySQL:
		return "mysql", nil
	case BackendPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported SQL backend %q", backend)
	}
}

// NewSQLStore opens the database, verifies the connection and creates the
// slot table when missing.
func NewSQLStore(ctx context.Context, backend, connStr string) (*SQLStore, error) {
	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}
	if connStr == "" {
		return nil, fmt.Errorf("%s storage requires a connection string", backend)
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == BackendSQLite {
		// A single connection avoids "database is locked" errors.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, sqlPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}

	if _, err := db.ExecContext(ctx, createTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", kvTable, err)
	}

	return &SQLStore{db: db, backend: backend}, nil
}

func createTableQuery(backend string) string {
	switch backend {
	case BackendMySQL:
		return `CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
			kv_key VARCHAR(255) PRIMARY KEY,
			kv_value LONGBLOB NOT NULL,
			updated_at BIGINT NOT NULL
		)`
	case BackendPostgres:
		return `CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
			kv_key TEXT PRIMARY KEY,
			kv_value BYTEA NOT NULL,
			updated_at BIGINT NOT NULL
		)`
	default:
		return `CREATE TABLE IF NOT EXISTS ` + kvTable + ` (
			kv_key TEXT PRIMARY KEY,
			kv_value BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)`
	}
}

func (s *SQLStore) selectQuery() string {
	if s.backend == BackendPostgres {
		return `SELECT kv_value FROM ` + kvTable + ` WHERE kv_key = $1`
	}
	return `SELECT kv_value FROM ` + kvTable + ` WHERE kv_key = ?`
}

func (s *SQLStore) upsertQuery() string {
	switch s.backend {
	case BackendMySQL:
		return `INSERT INTO ` + kvTable + ` (kv_key, kv_value, updated_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE kv_value = new.kv_value, updated_at = new.updated_at`
	case BackendPostgres:
		return `INSERT INTO ` + kvTable + ` (kv_key, kv_value, updated_at) VALUES ($1, $2, $3)
			ON CONFLICT (kv_key) DO UPDATE SET kv_value = EXCLUDED.kv_value, updated_at = EXCLUDED.updated_at`
	default:
		return `INSERT INTO ` + kvTable + ` (kv_key, kv_value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (kv_key) DO UPDATE SET kv_value = excluded.kv_value, updated_at = excluded.updated_at`
	}
}

// Get reads the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRowContext(ctx, s.selectQuery(), key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery(), key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
