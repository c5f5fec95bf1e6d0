package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"examarchive/internal/common/query"
	"examarchive/internal/pastquestion/repository"
	pkgerrors "examarchive/pkg/errors"
)

type fakeBlobStorage struct {
	uploads   int
	blobs     map[string][]byte
	uploadErr error
	fetchErr  error
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStorage) Upload(ctx context.Context, payload []byte, contentType, originalName string) (string, error) {
	s.uploads++
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	key := fmt.Sprintf("2024-05-01/blob-%d.pdf", s.uploads)
	s.blobs[key] = payload
	return key, nil
}

func (s *fakeBlobStorage) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	payload, ok := s.blobs[key]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.BlobNotFound)
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

type failingRepo struct {
	repository.PastQuestionRepository
}

func (r *failingRepo) Create(ctx context.Context, record *repository.PastQuestion) error {
	return fmt.Errorf("connection reset")
}

func validUpload() UploadInput {
	return UploadInput{
		Title:    "Algebra Past Paper",
		Subject:  "Mathematics",
		Year:     "2020",
		FileName: "algebra.pdf",
		MimeType: "application/pdf",
		Payload:  []byte("%PDF-1.4 content"),
	}
}

func TestUploadValidatesBeforeBlobWrite(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*UploadInput)
		wantCode pkgerrors.ErrorCode
	}{
		{
			name:     "missing title",
			mutate:   func(in *UploadInput) { in.Title = "  " },
			wantCode: pkgerrors.RequiredFieldEmpty,
		},
		{
			name:     "missing file",
			mutate:   func(in *UploadInput) { in.Payload = nil },
			wantCode: pkgerrors.FileRequired,
		},
		{
			name: "disallowed type",
			mutate: func(in *UploadInput) {
				in.FileName = "malware.exe"
				in.MimeType = "application/octet-stream"
			},
			wantCode: pkgerrors.FileTypeNotAllowed,
		},
		{
			name:     "too large",
			mutate:   func(in *UploadInput) { in.Payload = make([]byte, 11) },
			wantCode: pkgerrors.FileTooLarge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			blobs := newFakeBlobStorage()
			svc := NewPastQuestionService(repository.NewMemoryPastQuestionRepository(), blobs, Options{MaxFileSizeBytes: 10})

			input := validUpload()
			if tc.name != "too large" {
				input.Payload = []byte("x")
			}
			tc.mutate(&input)

			_, err := svc.Upload(context.Background(), input)
			if pkgerrors.GetCode(err) != tc.wantCode {
				t.Fatalf("code = %d, want %d (err: %v)", pkgerrors.GetCode(err), tc.wantCode, err)
			}
			if blobs.uploads != 0 {
				t.Fatalf("blob write happened for rejected upload")
			}
		})
	}
}

func TestUploadAcceptsByExtensionWhenMimeIsGeneric(t *testing.T) {
	blobs := newFakeBlobStorage()
	svc := NewPastQuestionService(repository.NewMemoryPastQuestionRepository(), blobs, Options{})

	input := validUpload()
	input.MimeType = "application/octet-stream"
	input.FileName = "paper.docx"

	if _, err := svc.Upload(context.Background(), input); err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func TestUploadStoresBlobAndRecord(t *testing.T) {
	blobs := newFakeBlobStorage()
	repo := repository.NewMemoryPastQuestionRepository()
	svc := NewPastQuestionService(repo, blobs, Options{})

	record, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if record.ID == 0 {
		t.Error("record id not assigned")
	}
	if record.FileKey == "" {
		t.Error("file key not set")
	}
	if record.Size != int64(len("%PDF-1.4 content")) {
		t.Errorf("size = %d", record.Size)
	}
	if record.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if _, ok := blobs.blobs[record.FileKey]; !ok {
		t.Error("payload not stored under the record's key")
	}
}

func TestUploadMetadataFailureLeavesOrphanBlob(t *testing.T) {
	blobs := newFakeBlobStorage()
	svc := NewPastQuestionService(&failingRepo{}, blobs, Options{})

	_, err := svc.Upload(context.Background(), validUpload())
	if pkgerrors.GetCode(err) != pkgerrors.PastQuestionCreateFailed {
		t.Fatalf("code = %d, want PastQuestionCreateFailed", pkgerrors.GetCode(err))
	}
	// The upload is not rolled back.
	if blobs.uploads != 1 || len(blobs.blobs) != 1 {
		t.Fatalf("blob store state: uploads=%d blobs=%d", blobs.uploads, len(blobs.blobs))
	}
}

func TestDownloadStreamsStoredPayload(t *testing.T) {
	blobs := newFakeBlobStorage()
	svc := NewPastQuestionService(repository.NewMemoryPastQuestionRepository(), blobs, Options{})

	created, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	record, stream, err := svc.Download(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer stream.Close()

	payload, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(payload) != "%PDF-1.4 content" {
		t.Errorf("payload = %q", payload)
	}
	if record.FileName != "algebra.pdf" {
		t.Errorf("file name = %q", record.FileName)
	}
}

func TestDownloadUnknownID(t *testing.T) {
	svc := NewPastQuestionService(repository.NewMemoryPastQuestionRepository(), newFakeBlobStorage(), Options{})

	_, _, err := svc.Download(context.Background(), 99)
	if pkgerrors.GetCode(err) != pkgerrors.PastQuestionNotFound {
		t.Fatalf("code = %d, want PastQuestionNotFound", pkgerrors.GetCode(err))
	}
}

func TestDownloadMissingBlob(t *testing.T) {
	blobs := newFakeBlobStorage()
	svc := NewPastQuestionService(repository.NewMemoryPastQuestionRepository(), blobs, Options{})

	created, err := svc.Upload(context.Background(), validUpload())
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	delete(blobs.blobs, created.FileKey)

	_, _, err = svc.Download(context.Background(), created.ID)
	if pkgerrors.GetCode(err) != pkgerrors.BlobNotFound {
		t.Fatalf("code = %d, want BlobNotFound", pkgerrors.GetCode(err))
	}
}

func TestStoreOutageSurfacesAsUnreachable(t *testing.T) {
	svc := NewPastQuestionService(repository.NewUnavailablePastQuestionRepository(), newFakeBlobStorage(), Options{})

	if _, err := svc.Get(context.Background(), 1); pkgerrors.GetCode(err) != pkgerrors.DatabaseUnreachable {
		t.Fatalf("get: code = %d, want DatabaseUnreachable", pkgerrors.GetCode(err))
	}
	if _, err := svc.List(context.Background(), query.Filter{}); pkgerrors.GetCode(err) != pkgerrors.DatabaseUnreachable {
		t.Fatalf("list: code = %d, want DatabaseUnreachable", pkgerrors.GetCode(err))
	}
	if _, err := svc.Upload(context.Background(), validUpload()); pkgerrors.GetCode(err) != pkgerrors.DatabaseUnreachable {
		t.Fatalf("upload: code = %d, want DatabaseUnreachable", pkgerrors.GetCode(err))
	}
}

func TestListPassesFilterThrough(t *testing.T) {
	repo := repository.NewMemoryPastQuestionRepository()
	svc := NewPastQuestionService(repo, newFakeBlobStorage(), Options{})

	for _, title := range []string{"Algebra", "Biology", "Chemistry"} {
		input := validUpload()
		input.Title = title
		if _, err := svc.Upload(context.Background(), input); err != nil {
			t.Fatalf("upload %s: %v", title, err)
		}
	}

	result, err := svc.List(context.Background(), query.Filter{Q: "biology"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 1 || result.Items[0].Title != "Biology" {
		t.Fatalf("result = %+v", result)
	}
}
