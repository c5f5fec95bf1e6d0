package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	pkgerrors "examarchive/pkg/errors"
)

// objectKeyPrefix namespaces uploaded blobs inside the bucket.
const objectKeyPrefix = "past-questions/"

// MinIOConfig holds object storage settings for any S3-compatible backend.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
	Bucket    string `yaml:"bucket"`
}

// MinIOStorage implements BlobStorage using MinIO S3-compatible APIs.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates an object-store-backed blob store. A missing
// bucket is a deployment error and fails before any network call.
func NewMinIOStorage(cfg MinIOConfig) (*MinIOStorage, error) {
	if cfg.Bucket == "" {
		return nil, pkgerrors.New(pkgerrors.StorageMisconfigured).
			WithMessage("object storage bucket is required")
	}
	if cfg.Endpoint == "" {
		return nil, pkgerrors.New(pkgerrors.StorageMisconfigured).
			WithMessage("object storage endpoint is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}
	return &MinIOStorage{client: client, bucket: cfg.Bucket}, nil
}

// Upload performs a single put of the full buffer with the given content
// type under a past-questions/<date>/<uuid><ext> path.
func (s *MinIOStorage) Upload(ctx context.Context, payload []byte, contentType, originalName string) (string, error) {
	if s.bucket == "" {
		return "", pkgerrors.New(pkgerrors.StorageMisconfigured).
			WithMessage("object storage bucket is required")
	}

	key := objectKeyPrefix + NewKey(originalName, time.Now())
	opts := minio.PutObjectOptions{}
	if contentType != "" {
		opts.ContentType = contentType
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), opts)
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.BlobUploadFailed)
	}
	return key, nil
}

// Fetch performs a get and returns the response body as a stream.
func (s *MinIOStorage) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.bucket == "" {
		return nil, pkgerrors.New(pkgerrors.StorageMisconfigured).
			WithMessage("object storage bucket is required")
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio get object failed: %w", err)
	}

	// GetObject is lazy; a Stat surfaces missing keys before the caller
	// starts streaming.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, pkgerrors.New(pkgerrors.BlobNotFound).WithDetail("key", key)
		}
		return nil, fmt.Errorf("minio stat object failed: %w", err)
	}
	return obj, nil
}
