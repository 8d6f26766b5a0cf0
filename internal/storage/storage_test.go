package storage

import (
	"context"
	"errors"
	"testing"

	"docserver/internal/errs"
	"docserver/internal/model"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_WriteReadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	path := "/data/node1/R/INV/2026/10/a.pdf"

	require.NoError(t, s.WriteFile(ctx, path, []byte("%PDF-1.7")))

	ok, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), data)

	require.NoError(t, s.DeleteFile(ctx, path))
	ok, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	assert.NoError(t, s.DeleteFile(ctx, path))
}

func TestFS_ReadMissingFile(t *testing.T) {
	s := NewMemory()

	_, err := s.ReadFile(context.Background(), "/nowhere/x.bin")
	assert.ErrorIs(t, err, errs.ErrFileNotFound)
	assert.Equal(t, errs.ClassInfrastructure, errs.ClassOf(err))
}

func TestFS_WriteFailure(t *testing.T) {
	s := NewFS(afero.NewReadOnlyFs(afero.NewMemMapFs()))

	err := s.WriteFile(context.Background(), "/data/a.bin", []byte("x"))
	assert.ErrorIs(t, err, errs.ErrStorageWriteFailed)
}

func TestFS_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewMemory()

	err := s.WriteFile(ctx, "/data/a.bin", []byte("x"))
	assert.ErrorIs(t, err, errs.ErrStorageWriteFailed)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.ReadFile(ctx, "/data/a.bin")
	assert.ErrorIs(t, err, errs.ErrStorageReadFailed)
}

func TestRegistry_ForNode(t *testing.T) {
	files := NewMemory()
	r := NewRegistry(files, nil)

	got, err := r.ForNode(&model.StorageNode{Name: "local", Location: model.LocationHostedLocal})
	require.NoError(t, err)
	assert.Same(t, files, got)

	got, err = r.ForNode(&model.StorageNode{Name: "share", Location: model.LocationHostedSMB})
	require.NoError(t, err)
	assert.Same(t, files, got)

	_, err = r.ForNode(&model.StorageNode{Name: "bucket", Location: model.LocationObjectStore})
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestTransfer(t *testing.T) {
	raw := []byte{0x00, 0xff, 'h', 'i'}

	decoded, err := DecodeTransfer(EncodeTransfer(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	_, err = DecodeTransfer("not base64!")
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "docs/R/INV/2026/10/a.pdf", objectKey("/docs/R/INV/2026/10/a.pdf"))
	assert.Equal(t, "docs/T/TMP/2026/10/b.tmp", objectKey("docs//T/TMP/2026/10/b.tmp"))
}

func TestIsNoSuchKey(t *testing.T) {
	assert.True(t, isNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.False(t, isNoSuchKey(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNoSuchKey(errors.New("dial tcp: connection refused")))
}
