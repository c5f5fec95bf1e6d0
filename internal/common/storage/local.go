package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "examarchive/pkg/errors"
)

// LocalConfig holds filesystem blob storage settings.
type LocalConfig struct {
	// Dir is the root directory blob keys resolve under.
	Dir string `yaml:"dir"`
}

// LocalStorage implements BlobStorage on the local filesystem. Keys resolve
// to paths under the configured root directory, with the date partition as
// an intermediate directory.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a filesystem-backed blob store rooted at dir.
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	if cfg.Dir == "" {
		return nil, pkgerrors.New(pkgerrors.StorageMisconfigured).
			WithMessage("local storage dir is required")
	}
	return &LocalStorage{root: cfg.Dir}, nil
}

// Upload writes the full payload under a generated key, creating
// intermediate directories as needed.
func (s *LocalStorage) Upload(ctx context.Context, payload []byte, contentType, originalName string) (string, error) {
	key := NewKey(originalName, time.Now())

	filePath, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory failed: %w", err)
	}
	if err := os.WriteFile(filePath, payload, 0o644); err != nil {
		return "", fmt.Errorf("write blob failed: %w", err)
	}
	return key, nil
}

// Fetch opens a read stream over the resolved path.
func (s *LocalStorage) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.New(pkgerrors.BlobNotFound).WithDetail("key", key)
		}
		return nil, fmt.Errorf("open blob failed: %w", err)
	}
	return file, nil
}

// resolve maps a key to a filesystem path, rejecting keys that would escape
// the storage root.
func (s *LocalStorage) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", pkgerrors.New(pkgerrors.BlobNotFound).WithDetail("key", key)
	}
	parts := strings.Split(key, "/")
	return filepath.Join(append([]string{s.root}, parts...)...), nil
}
