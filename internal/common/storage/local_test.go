package storage

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	pkgerrors "examarchive/pkg/errors"
)

func TestNewKeyShape(t *testing.T) {
	now := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)

	cases := []struct {
		name    string
		file    string
		wantExt string
	}{
		{"pdf kept", "algebra.PDF", ".pdf"},
		{"docx kept", "paper.docx", ".docx"},
		{"no extension defaults", "paper", ".pdf"},
		{"trailing dot defaults", "paper.", ".pdf"},
	}

	pattern := regexp.MustCompile(`^2024-05-01/[0-9a-f-]{36}`)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key := NewKey(tc.file, now)
			if !pattern.MatchString(key) {
				t.Fatalf("key %q does not start with date partition and uuid", key)
			}
			if got := key[len(key)-len(tc.wantExt):]; got != tc.wantExt {
				t.Errorf("extension = %q, want %q", got, tc.wantExt)
			}
		})
	}
}

func TestNewKeyUnique(t *testing.T) {
	now := time.Now()
	if NewKey("a.pdf", now) == NewKey("a.pdf", now) {
		t.Fatal("two keys for the same input collided")
	}
}

func TestLocalStorageRequiresDir(t *testing.T) {
	if _, err := NewLocalStorage(LocalConfig{}); pkgerrors.GetCode(err) != pkgerrors.StorageMisconfigured {
		t.Fatalf("err = %v, want StorageMisconfigured", err)
	}
}

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(LocalConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	payload := []byte("%PDF-1.4 test")
	key, err := store.Upload(context.Background(), payload, "application/pdf", "algebra.pdf")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	stream, err := store.Fetch(context.Background(), key)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer stream.Close()

	got, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload = %q", got)
	}
}

func TestLocalStorageFetchMissingKey(t *testing.T) {
	store, err := NewLocalStorage(LocalConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = store.Fetch(context.Background(), "2024-05-01/does-not-exist.pdf")
	if pkgerrors.GetCode(err) != pkgerrors.BlobNotFound {
		t.Fatalf("err = %v, want BlobNotFound", err)
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(LocalConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for _, key := range []string{"", "../etc/passwd", "2024-05-01/../../etc/passwd"} {
		if _, err := store.Fetch(context.Background(), key); pkgerrors.GetCode(err) != pkgerrors.BlobNotFound {
			t.Errorf("key %q: err = %v, want BlobNotFound", key, err)
		}
	}
}
