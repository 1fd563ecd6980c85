package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore persists one JSON file per cart key under a base directory,
// a durable local medium surviving process restarts.
//
// Saves are atomic: the record is written to a temp file and renamed over
// the previous one, so a crash mid-write never leaves a torn record behind.
type FileStore[T any] struct {
	dir  string
	mode os.FileMode
}

// FileStoreOption configures a FileStore.
type FileStoreOption[T any] func(*FileStore[T])

// FileWithMode overrides the permission bits for written records.
func FileWithMode[T any](mode os.FileMode) FileStoreOption[T] {
	return func(s *FileStore[T]) {
		s.mode = mode
	}
}

func NewFileStore[T any](dir string, opts ...FileStoreOption[T]) *FileStore[T] {
	s := &FileStore[T]{dir: dir, mode: 0o600}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *FileStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return zero, Meta{}, false, nil
	}
	if err != nil {
		return zero, Meta{}, false, fmt.Errorf("storage: read %q: %w", key, err)
	}

	snapshot, meta, err := decodeRecord[T]("file", key, raw)
	if err != nil {
		return zero, Meta{}, false, err
	}
	return snapshot, meta, true, nil
}

func (s *FileStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = time.Now()
	}
	raw, err := encodeRecord(snapshot, meta)
	if err != nil {
		return Meta{}, err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Meta{}, fmt.Errorf("storage: prepare %q: %w", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cart-*")
	if err != nil {
		return Meta{}, fmt.Errorf("storage: temp file for %q: %w", key, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("storage: write %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("storage: close %q: %w", key, err)
	}
	if err := os.Chmod(tmp.Name(), s.mode); err != nil {
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("storage: chmod %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return Meta{}, fmt.Errorf("storage: commit %q: %w", key, err)
	}
	return meta, nil
}

func (s *FileStore[T]) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+".json")
}
