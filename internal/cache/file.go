package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/vetverify/internal/apperr"
)

const tempPrefix = ".tmp-"

// FileBackend stores blobs as files in a single directory.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, eris.Wrapf(err, "cache: create dir %s", dir)
	}
	return &FileBackend{dir: dir}, nil
}

// Dir returns the backing directory.
func (b *FileBackend) Dir() string { return b.dir }

// List returns file names in the directory that start with prefix.
func (b *FileBackend) List(_ context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, eris.Wrapf(err, "cache: list %s", b.dir)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, tempPrefix) {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Get reads the file for key.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(b.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &apperr.NotFoundError{Key: key}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: read %s", key)
	}
	return data, nil
}

// Put writes data to a temp file and renames it over key.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(b.dir, tempPrefix+key+"-*")
	if err != nil {
		return "", eris.Wrapf(err, "cache: create temp for %s", key)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return "", eris.Wrapf(err, "cache: write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrapf(err, "cache: close %s", key)
	}
	if err := os.Rename(tmpName, filepath.Join(b.dir, key)); err != nil {
		return "", eris.Wrapf(err, "cache: rename %s", key)
	}
	return b.Location(key), nil
}

// Location returns the file path for key.
func (b *FileBackend) Location(key string) string {
	return filepath.Join(b.dir, key)
}
