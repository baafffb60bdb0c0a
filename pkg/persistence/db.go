// Package persistence provides SQLite-backed storage for documents,
// sentences, and their analysis records. Idempotency relies on the store's
// uniqueness constraints, not application-level checking: concurrent writers
// race through "insert, and reconcile on conflict".
package persistence

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"langops/pkg/logx"
)

// InitializeDatabase opens the SQLite database and brings the schema to the
// current version. Idempotent and safe to call multiple times.
func InitializeDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_foreign_keys=ON&_journal_mode=WAL&_busy_timeout=5000",
		dbPath,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initializeSchemaWithMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	logx.NewLogger("persistence").Debug("database initialized at %s", dbPath)
	return db, nil
}

// Store provides the persistence operations over one database handle.
type Store struct {
	db     *sql.DB
	logger *logx.Logger
}

// NewStore creates a Store over an initialized database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:     db,
		logger: logx.NewLogger("persistence"),
	}
}

// DB exposes the underlying handle for transaction-scoped callers.
func (s *Store) DB() *sql.DB {
	return s.db
}
