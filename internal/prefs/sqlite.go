package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/nightshift/internal/migration"
	"github.com/julianstephens/nightshift/migrations"
)

// SQLiteBackend keeps preferences in a single-table SQLite database
type SQLiteBackend struct {
	path string
	db   *sql.DB
}

func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

// dsn forces a full fsync on every commit so that Write is durable on return
func (b *SQLiteBackend) dsn() string {
	return "file:" + b.path + "?_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"
}

func (b *SQLiteBackend) open() error {
	db, err := sql.Open("sqlite", b.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps the single-owner model for the file
	db.SetMaxOpenConns(1)
	b.db = db
	return nil
}

func (b *SQLiteBackend) Init() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if b.db == nil {
		if err := b.open(); err != nil {
			return err
		}
	}

	runner, err := b.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Load() error {
	if b.db != nil {
		return nil
	}
	if _, err := os.Stat(b.path); errors.Is(err, fs.ErrNotExist) {
		return ErrNotInitialized
	}
	if err := b.open(); err != nil {
		return err
	}

	runner, err := b.runner()
	if err != nil {
		return err
	}
	return runner.Validate()
}

func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *SQLiteBackend) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(b.db, subFS), nil
}

// Runner exposes the migration runner bound to this database
func (b *SQLiteBackend) Runner() (*migration.Runner, error) {
	if b.db == nil {
		return nil, ErrNotInitialized
	}
	return b.runner()
}

func (b *SQLiteBackend) Read(key string) (Entry, bool, error) {
	if b.db == nil {
		return Entry{}, false, ErrNotInitialized
	}

	var kind, value string
	err := b.db.QueryRow("SELECT kind, value FROM preferences WHERE key = ?", key).Scan(&kind, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return Entry{Key: key, Kind: Kind(kind), Value: value}, true, nil
}

func (b *SQLiteBackend) Write(e Entry) error {
	if b.db == nil {
		return ErrNotInitialized
	}

	_, err := b.db.Exec(`
		INSERT INTO preferences (key, kind, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, value = excluded.value, updated_at = excluded.updated_at`,
		e.Key, string(e.Kind), e.Value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (b *SQLiteBackend) Delete(key string) error {
	if b.db == nil {
		return ErrNotInitialized
	}
	_, err := b.db.Exec("DELETE FROM preferences WHERE key = ?", key)
	return err
}

func (b *SQLiteBackend) Keys() ([]string, error) {
	if b.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := b.db.Query("SELECT key FROM preferences ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (b *SQLiteBackend) Path() string {
	return b.path
}
