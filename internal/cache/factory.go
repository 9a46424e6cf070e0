package cache

import (
	"context"

	"github.com/rotisserie/eris"
)

// Backend kinds accepted by OpenBackend.
const (
	KindFile     = "file"
	KindS3       = "s3"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
)

// BackendOptions selects and configures a Backend.
type BackendOptions struct {
	Kind        string
	Dir         string
	S3          S3Options
	SQLitePath  string
	PostgresURL string
}

// OpenBackend builds the configured backend. The returned close function
// releases database handles and is safe to call for every kind.
func OpenBackend(ctx context.Context, opts BackendOptions) (Backend, func() error, error) {
	noop := func() error { return nil }

	switch opts.Kind {
	case "", KindFile:
		b, err := NewFileBackend(opts.Dir)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	case KindS3:
		b, err := NewS3Backend(ctx, opts.S3)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil
	case KindSQLite:
		if opts.SQLitePath == "" {
			return nil, noop, eris.New("cache: sqlite path is required")
		}
		b, err := NewSQLiteBackend(ctx, opts.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	case KindPostgres:
		if opts.PostgresURL == "" {
			return nil, noop, eris.New("cache: postgres database url is required")
		}
		b, err := NewPostgresBackend(ctx, opts.PostgresURL)
		if err != nil {
			return nil, noop, err
		}
		return b, b.Close, nil
	default:
		return nil, noop, eris.Errorf("cache: unknown backend %q", opts.Kind)
	}
}
