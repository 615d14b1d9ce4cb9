package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLiteStore keeps named snapshots in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	name string
}

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:"
// for a throwaway database.
func NewSQLiteStore(path, name string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("persist: sqlite: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite %s: %w", path, err)
	}
	// One connection, so ":memory:" stays a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("persist: sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, name: name}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE name = ?`, s.name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("persist: sqlite load: %w", err)
	}
	snap, err := Import([]byte(body))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("persist: sqlite load: %w", err)
	}
	return snap, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	body, err := encode(snap)
	if err != nil {
		return fmt.Errorf("persist: sqlite save: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.name, string(body), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("persist: sqlite save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
