package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores entries as rows of one table in a SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

var _ Backend = (*SQLiteBackend)(nil)

// NewSQLiteBackend opens (or creates) the database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) migrate() error {
	_, err := b.db.Exec(`
	CREATE TABLE IF NOT EXISTS state_entries (
		path TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`)
	return err
}

// Close releases the database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Write(p string, data []byte) error {
	_, err := b.db.Exec(`
		INSERT INTO state_entries (path, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		p, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

func (b *SQLiteBackend) Read(p string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRow(`SELECT data FROM state_entries WHERE path = ?`, p).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

func (b *SQLiteBackend) Exists(p string) (bool, error) {
	var n int
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM state_entries WHERE path = ?`, p).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *SQLiteBackend) Delete(p string) error {
	_, err := b.db.Exec(`DELETE FROM state_entries WHERE path = ?`, p)
	return err
}

// MkdirAll is a no-op; paths are plain keys in the table.
func (b *SQLiteBackend) MkdirAll(string) error { return nil }
