package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps the table in a flat text file, one entry per line.
type FileStore struct {
	path  string
	delim string
}

// NewFileStore returns a store backed by path. An empty delim means
// DefaultDelimiter.
func NewFileStore(path, delim string) *FileStore {
	if delim == "" {
		delim = DefaultDelimiter
	}
	return &FileStore{path: path, delim: delim}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Load reads the first n lines of the file. A missing file is reported as an
// error wrapping fs.ErrNotExist.
func (s *FileStore) Load(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	defer f.Close()

	entries, err := Decode(f, n, s.delim)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return entries, nil
}

// Save overwrites the file with entries, creating its directory if needed.
func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &PersistenceError{Op: "save", Path: s.path, Err: fmt.Errorf("create directory: %w", err)}
		}
	}
	if err := os.WriteFile(s.path, Encode(entries, s.delim), 0644); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}
