// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// DB wraps the database connection with production-grade configuration
type DB struct {
	conn *sql.DB
	path string
	name string // Database name for logging and schema lookup
}

// Config holds database configuration
type Config struct {
	Path string
	Name string // Friendly name, also selects schemas/<name>_schema.sql
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	cfg.Path = absPath

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn: conn,
		path: cfg.Path,
		name: cfg.Name,
	}, nil
}

// buildConnectionString creates the SQLite connection string with its PRAGMAs
func buildConnectionString(path string) string {
	connStr := path + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(NORMAL)"
	connStr += "&_pragma=auto_vacuum(INCREMENTAL)"
	connStr += "&_pragma=temp_store(MEMORY)"
	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=busy_timeout(5000)"
	connStr += "&_pragma=wal_autocheckpoint(1000)"

	return connStr
}

// configureConnectionPool sets up connection pool for long-term operation
func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
// Used by repositories to execute queries
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the embedded schema for this database. Schemas are written
// with IF NOT EXISTS so applying them repeatedly is safe.
func (db *DB) Migrate() error {
	schema, err := Schema(db.name)
	if err != nil {
		return err
	}

	return WithTransaction(db.conn, func(tx *sql.Tx) error {
		if _, err := tx.Exec(schema); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				return nil
			}
			return fmt.Errorf("failed to execute schema for %s: %w", db.name, err)
		}
		return nil
	})
}

// WithTransaction executes a function within a database transaction.
// If the function returns an error or panics, the transaction is rolled back.
func WithTransaction(db *sql.DB, fn func(*sql.Tx) error) (err error) {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		} else if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback also failed: %v)", err, rollbackErr)
			} else {
				err = fmt.Errorf("transaction failed: %w", err)
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck pings the database and runs an integrity check
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed for %s: %w", db.name, err)
	}

	var integrityResult string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		return fmt.Errorf("integrity check query failed for %s: %w", db.name, err)
	}

	if integrityResult != "ok" {
		return fmt.Errorf("integrity check failed for %s: %s", db.name, integrityResult)
	}

	return nil
}

// WALCheckpoint forces a WAL checkpoint to prevent bloat
func (db *DB) WALCheckpoint(mode string) error {
	// Modes: PASSIVE, FULL, RESTART, TRUNCATE
	if mode == "" {
		mode = "TRUNCATE"
	}

	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)); err != nil {
		return fmt.Errorf("WAL checkpoint failed for %s: %w", db.name, err)
	}

	return nil
}

// Stats returns database statistics
type Stats struct {
	SizeBytes     int64 `json:"size_bytes"`
	WALSizeBytes  int64 `json:"wal_size_bytes"`
	PageCount     int64 `json:"page_count"`
	PageSize      int64 `json:"page_size"`
	FreelistCount int64 `json:"freelist_count"`
}

// GetStats retrieves database statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if fileInfo, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = fileInfo.Size()
	}
	if fileInfo, err := os.Stat(db.path + "-wal"); err == nil {
		stats.WALSizeBytes = fileInfo.Size()
	}

	if err := db.conn.QueryRow("PRAGMA page_count").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA page_size").Scan(&stats.PageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA freelist_count").Scan(&stats.FreelistCount); err != nil {
		return nil, fmt.Errorf("failed to get freelist count: %w", err)
	}

	return stats, nil
}

// Schema returns the embedded schema of the named database
func Schema(name string) (string, error) {
	content, err := schemaFS.ReadFile("schemas/" + name + "_schema.sql")
	if err != nil {
		return "", fmt.Errorf("no schema for database %s: %w", name, err)
	}
	return string(content), nil
}
