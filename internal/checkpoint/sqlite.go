package checkpoint

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps the checkpoint as a single row of a SQLite database
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the checkpoint database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create checkpoint directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// createTables creates the checkpoint table. The id check limits it to one
// row.
func createTables(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS checkpoint (
		id integer PRIMARY KEY CHECK (id = 1),
		version integer NOT NULL,
		created_at text NOT NULL,
		record blob NOT NULL
	)`)
	return err
}

// Location implements Store
func (s *SQLiteStore) Location() string {
	return s.path
}

// Save implements Store
func (s *SQLiteStore) Save(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO checkpoint (id, version, created_at, record) VALUES (1, ?, ?, ?)`,
		rec.Version, rec.CreatedAt.Format(time.RFC3339Nano), data)
	if err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Load implements Store
func (s *SQLiteStore) Load() (*Record, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT record FROM checkpoint WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCheckpoint
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	return decodeRecord(data)
}

// Clear implements Store
func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM checkpoint`); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
