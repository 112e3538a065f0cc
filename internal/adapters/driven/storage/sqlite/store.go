// Package sqlite persists documents and chunks in a single SQLite file
// through the pure Go modernc.org/sqlite driver. Embeddings are stored
// next to their chunk as little-endian float32 blobs so the vector index
// can be rebuilt on start.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// FileName is the database file created inside the data directory.
const FileName = "metadata.db"

// pragmas: WAL so a watch loop can write while the CLI reads, a busy
// timeout instead of immediate SQLITE_BUSY, and enforced foreign keys for
// the chunk cascade.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// Store owns the database handle.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates <dataDir>/metadata.db and applies pending
// migrations. An empty dataDir means ~/.docqa/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docqa", "data")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dataDir, FileName)
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns the document and chunk repository.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{db: s.db}
}
