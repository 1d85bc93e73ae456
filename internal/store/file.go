package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/iksnae/manoj-chat/internal"
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// FileBackend stores each key as <dir>/<key>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &internal.StorageError{Backend: string(DriverFile), Key: dir, Op: "open", Err: err}
	}
	return &FileBackend{dir: dir}, nil
}

// Path returns the file that holds key.
func (b *FileBackend) Path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) checkKey(key string) error {
	if !safeKey.MatchString(key) {
		return fmt.Errorf("%w: key %q is not a safe file name", ErrInvalidConfig, key)
	}
	return nil
}

// Get implements Backend.
func (b *FileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := b.checkKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &internal.StorageError{Backend: string(DriverFile), Key: key, Op: "get", Err: err}
	}
	return string(data), true, nil
}

// Set writes through a temp file and rename so a crash never leaves half a value.
func (b *FileBackend) Set(ctx context.Context, key, value string) error {
	if err := b.checkKey(key); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return &internal.StorageError{Backend: string(DriverFile), Key: key, Op: "set", Err: err}
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return &internal.StorageError{Backend: string(DriverFile), Key: key, Op: "set", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &internal.StorageError{Backend: string(DriverFile), Key: key, Op: "set", Err: err}
	}
	if err := os.Rename(tmpPath, b.Path(key)); err != nil {
		return &internal.StorageError{Backend: string(DriverFile), Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Backend.
func (b *FileBackend) Delete(ctx context.Context, key string) error {
	if err := b.checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(b.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &internal.StorageError{Backend: string(DriverFile), Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Backend.
func (b *FileBackend) Close() error {
	return nil
}
