package storage

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"docserver/internal/errs"
)

// FS stores files on an afero filesystem: the host OS for hosted nodes, an
// in-memory tree in tests.
type FS struct {
	fs afero.Fs
}

// NewFS wraps an arbitrary afero filesystem.
func NewFS(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewLocal writes through to the operating system.
func NewLocal() *FS {
	return NewFS(afero.NewOsFs())
}

// NewMemory keeps everything in memory.
func NewMemory() *FS {
	return NewFS(afero.NewMemMapFs())
}

func (s *FS) WriteFile(ctx context.Context, path string, data []byte) error {
	const op = "storage.FS.WriteFile"
	if err := ctx.Err(); err != nil {
		return errs.E(errs.StorageWriteFailed, op, err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.E(errs.StorageWriteFailed, op, err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return errs.E(errs.StorageWriteFailed, op, err)
	}
	return nil
}

func (s *FS) ReadFile(ctx context.Context, path string) ([]byte, error) {
	const op = "storage.FS.ReadFile"
	if err := ctx.Err(); err != nil {
		return nil, errs.E(errs.StorageReadFailed, op, err)
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, errs.E(errs.FileNotFound, op, err)
		}
		return nil, errs.E(errs.StorageReadFailed, op, err)
	}
	return data, nil
}

func (s *FS) DeleteFile(ctx context.Context, path string) error {
	const op = "storage.FS.DeleteFile"
	if err := ctx.Err(); err != nil {
		return errs.E(errs.StorageWriteFailed, op, err)
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return errs.E(errs.StorageWriteFailed, op, err)
	}
	return nil
}

func (s *FS) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errs.E(errs.StorageReadFailed, "storage.FS.Exists", err)
	}
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, errs.E(errs.StorageReadFailed, "storage.FS.Exists", err)
	}
	return ok, nil
}
