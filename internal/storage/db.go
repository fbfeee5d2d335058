// Package storage persists the history of detekt runs in a SQLite database
// under the project's .detekt directory.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	derrors "detekt/internal/errors"
)

const schemaVersion = 1

// DB is a history database connection.
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the history database at dbPath.
func Open(dbPath string, logger *slog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, unavailable(dbPath, "failed to create history directory", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, unavailable(dbPath, "failed to open history database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, unavailable(dbPath, "failed to set pragma", err)
		}
	}

	db := &DB{conn: conn, logger: logger, dbPath: dbPath}
	if err := db.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, unavailable(dbPath, "failed to initialize history schema", err)
	}
	logger.Debug("History database opened", "path", dbPath)
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.dbPath }

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// WithTx executes fn within a transaction, rolling back when it fails.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction",
				"error", err.Error(),
				"rollback_error", rbErr.Error(),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (db *DB) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			project_root TEXT NOT NULL,
			config_kind TEXT NOT NULL,
			issue_count INTEGER NOT NULL,
			weighted_count INTEGER NOT NULL,
			threshold INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			tool_version TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

		CREATE TABLE IF NOT EXISTS run_rule_sets (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rule_set TEXT NOT NULL,
			issue_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, rule_set)
		);

		CREATE TABLE IF NOT EXISTS run_metrics (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			key TEXT NOT NULL,
			value INTEGER NOT NULL,
			PRIMARY KEY (run_id, key)
		);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}
	_, err := db.conn.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion)
	return err
}

func unavailable(path, msg string, cause error) error {
	return derrors.New(derrors.HistoryUnavailable, fmt.Sprintf("%s: %s", msg, path), cause).
		WithDetails(map[string]string{"path": path})
}
