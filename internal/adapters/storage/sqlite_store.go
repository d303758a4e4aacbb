package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements ports.Storage on a local SQLite file
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens (or creates) the database at path and ensures the schema
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY under concurrent background saves
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{sqlStore: &sqlStore{db: db, rebind: rebindNumbered}}
	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS password_hashes (
			hash TEXT PRIMARY KEY,
			hostname TEXT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS dom_hashes (
			hash TEXT NOT NULL,
			domain TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (hash, domain)
		);

		CREATE TABLE IF NOT EXISTS usernames (
			username TEXT NOT NULL,
			hostname TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (username, hostname)
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			url TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);
	`)

	return err
}
