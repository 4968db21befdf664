// Package journal records simulation runs in SQLite so they can be replayed
// and checked tick by tick.
package journal

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Connection options understood by the sqlite3 driver. They apply to every
// connection the pool opens.
const dsnOptions = "_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on"

var (
	// ErrRunNotFound is returned when a run ID has no row.
	ErrRunNotFound = errors.New("journal: run not found")
	// ErrChecksumMismatch is returned when a replay diverges from the record.
	ErrChecksumMismatch = errors.New("journal: checksum mismatch")
)

// Store is a SQLite-backed run journal.
type Store struct {
	db *sql.DB
}

// Open creates the journal file if needed and brings its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?"+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// Recorder batches are the only writer; one connection keeps them ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal %s: apply schema: %w", path, err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal %s: set schema version: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
