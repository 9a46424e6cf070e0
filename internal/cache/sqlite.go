package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // register driver

	"github.com/sells-group/vetverify/internal/apperr"
)

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS region_blobs (
	id         TEXT NOT NULL,
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// SQLiteBackend stores blobs as rows in a local SQLite database.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// NewSQLiteBackend opens the database at path, enables WAL and creates the
// blob table.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "cache: sqlite exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "cache: sqlite migrate")
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// List returns keys starting with prefix.
func (b *SQLiteBackend) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key FROM region_blobs WHERE key LIKE ? ESCAPE '\' ORDER BY key`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite list")
	}
	defer rows.Close() //nolint:errcheck

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, eris.Wrap(err, "cache: sqlite scan key")
		}
		keys = append(keys, k)
	}
	return keys, eris.Wrap(rows.Err(), "cache: sqlite list rows")
}

// Get returns the stored bytes for key.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, `SELECT data FROM region_blobs WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperr.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: sqlite get %s", key)
	}
	return data, nil
}

// Put upserts the row for key.
func (b *SQLiteBackend) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO region_blobs (id, key, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		uuid.New().String(), key, data, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "cache: sqlite put %s", key)
	}
	return b.Location(key), nil
}

// Location returns a sqlite: URL for key.
func (b *SQLiteBackend) Location(key string) string {
	return "sqlite://" + b.path + "#" + key
}
