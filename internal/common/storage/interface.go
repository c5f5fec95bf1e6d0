package storage

import (
	"context"
	"io"
)

// BlobStorage defines the two-operation contract every blob backend
// implements. Callers are fully decoupled from which backend is active;
// selection is a configuration decision made once at startup.
type BlobStorage interface {
	// Upload stores the payload under a freshly generated key and returns
	// that key. The key embeds a date partition, a random token and the
	// original file extension.
	Upload(ctx context.Context, payload []byte, contentType, originalName string) (string, error)

	// Fetch opens a streaming reader for a previously stored blob.
	// Caller must close the returned reader. A missing key yields a
	// not-found error.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}
