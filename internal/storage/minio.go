package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docserver/internal/config"
	"docserver/internal/errs"
)

// MinIO stores files as objects in one S3-compatible bucket (MinIO, AWS S3, etc.).
// The node root and computed folders become key prefixes.
// It is safe for concurrent use by multiple goroutines.
type MinIO struct {
	client *minio.Client
	bucket string
}

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (*MinIO, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &MinIO{client: cli, bucket: cfg.Bucket}, nil
}

// objectKey turns a resolved path into a bucket key.
func objectKey(path string) string {
	return strings.TrimLeft(filepath.ToSlash(filepath.Clean(path)), "/")
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// WriteFile uploads data using streaming I/O; prefixes need no creation.
func (m *MinIO) WriteFile(ctx context.Context, path string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey(path), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return errs.E(errs.StorageWriteFailed, "storage.MinIO.WriteFile", err)
	}
	return nil
}

func (m *MinIO) ReadFile(ctx context.Context, path string) ([]byte, error) {
	const op = "storage.MinIO.ReadFile"
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey(path), minio.GetObjectOptions{})
	if err != nil {
		return nil, m.readErr(op, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, m.readErr(op, err)
	}
	return data, nil
}

func (m *MinIO) readErr(op string, err error) error {
	if isNoSuchKey(err) {
		return errs.E(errs.FileNotFound, op, err)
	}
	return errs.E(errs.StorageReadFailed, op, err)
}

// DeleteFile removes the object. S3 deletes of absent keys succeed.
func (m *MinIO) DeleteFile(ctx context.Context, path string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, objectKey(path), minio.RemoveObjectOptions{}); err != nil {
		return errs.E(errs.StorageWriteFailed, "storage.MinIO.DeleteFile", err)
	}
	return nil
}

func (m *MinIO) Exists(ctx context.Context, path string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectKey(path), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, errs.E(errs.StorageReadFailed, "storage.MinIO.Exists", err)
}
