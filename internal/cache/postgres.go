package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/vetverify/internal/apperr"
)

// Pool is the subset of *pgxpool.Pool the backend uses. pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS region_blobs (
	id         UUID NOT NULL,
	key        TEXT PRIMARY KEY,
	data       BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend stores blobs as rows in Postgres.
type PostgresBackend struct {
	pool    Pool
	closeFn func()
}

// NewPostgresBackend connects, pings and creates the blob table.
func NewPostgresBackend(ctx context.Context, connString string) (*PostgresBackend, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres parse config")
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: postgres ping")
	}

	b := &PostgresBackend{pool: pool, closeFn: pool.Close}
	if err := b.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// Migrate creates the blob table if it does not exist.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "cache: postgres migrate")
}

// Close releases the pool.
func (b *PostgresBackend) Close() error {
	if b.closeFn != nil {
		b.closeFn()
	}
	return nil
}

// List returns keys starting with prefix.
func (b *PostgresBackend) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.pool.Query(ctx,
		`SELECT key FROM region_blobs WHERE key LIKE $1 ORDER BY key`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres list")
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, eris.Wrap(err, "cache: postgres scan keys")
	}
	return keys, nil
}

// Get returns the stored bytes for key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.pool.QueryRow(ctx, `SELECT data FROM region_blobs WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &apperr.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: postgres get %s", key)
	}
	return data, nil
}

// Put upserts the row for key.
func (b *PostgresBackend) Put(ctx context.Context, key string, data []byte) (string, error) {
	_, err := b.pool.Exec(ctx,
		`INSERT INTO region_blobs (id, key, data, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		uuid.New(), key, data, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "cache: postgres put %s", key)
	}
	return b.Location(key), nil
}

// Location returns a postgres: URL for key.
func (b *PostgresBackend) Location(key string) string {
	return "postgres://region_blobs/" + key
}
