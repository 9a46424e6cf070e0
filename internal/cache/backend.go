// Package cache persists one RegionBlob per region in a durable key/value
// store and keeps a local mirror of the same files.
package cache

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Backend is a durable blob store with atomic whole-value puts.
type Backend interface {
	// List returns the keys starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Get returns the stored bytes. A missing key yields *apperr.NotFoundError.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous value, and returns
	// the stored object's location.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Location describes where key lives without touching the store.
	Location(key string) string
}

// validateKey rejects keys that could escape a directory or prefix.
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return eris.Errorf("cache: invalid key %q", key)
	}
	return nil
}

// escapeLike escapes SQL LIKE wildcards so prefix is matched literally.
func escapeLike(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix)
}
