package service

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"examarchive/internal/common/query"
	"examarchive/internal/common/storage"
	"examarchive/internal/pastquestion/repository"
	pkgerrors "examarchive/pkg/errors"
	"examarchive/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultMaxFileSize = 20 << 20 // 20 MiB

// allowedMimeTypes and allowedExtensions gate uploads; a file passes when
// either its declared content type or its extension is recognized.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Options holds upload policy settings.
type Options struct {
	// MaxFileSizeBytes caps the accepted upload size. Zero means the
	// default 20 MiB.
	MaxFileSizeBytes int64
}

// PastQuestionService implements the past-question operations on top of the
// dual-mode repository and the active blob backend.
type PastQuestionService struct {
	repo        repository.PastQuestionRepository
	blobs       storage.BlobStorage
	maxFileSize int64
}

// NewPastQuestionService creates a new PastQuestionService.
func NewPastQuestionService(repo repository.PastQuestionRepository, blobs storage.BlobStorage, opts Options) *PastQuestionService {
	maxSize := opts.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = defaultMaxFileSize
	}
	return &PastQuestionService{repo: repo, blobs: blobs, maxFileSize: maxSize}
}

// MaxFileSize reports the configured upload cap in bytes, so callers can
// reject oversized files before buffering them.
func (s *PastQuestionService) MaxFileSize() int64 {
	return s.maxFileSize
}

// UploadInput carries one multipart upload.
type UploadInput struct {
	Title     string
	Subject   string
	ClassName string
	Year      string
	FileName  string
	MimeType  string
	Payload   []byte
}

// Upload validates the input, stores the payload in the blob store and
// persists the metadata record. Required-field checks run before the blob
// write so a rejected request leaves no orphan blob behind.
func (s *PastQuestionService) Upload(ctx context.Context, input UploadInput) (*repository.PastQuestion, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.RequiredFieldEmpty).WithMessage("Title is required")
	}
	if len(input.Payload) == 0 {
		return nil, pkgerrors.New(pkgerrors.FileRequired)
	}
	if !fileTypeAllowed(input.FileName, input.MimeType) {
		return nil, pkgerrors.New(pkgerrors.FileTypeNotAllowed)
	}
	if int64(len(input.Payload)) > s.maxFileSize {
		return nil, pkgerrors.New(pkgerrors.FileTooLarge).
			WithDetail("max_bytes", s.maxFileSize)
	}

	key, err := s.blobs.Upload(ctx, input.Payload, input.MimeType, input.FileName)
	if err != nil {
		if pkgerrors.GetCode(err) == pkgerrors.StorageMisconfigured {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.BlobUploadFailed)
	}

	record := &repository.PastQuestion{
		Title:     title,
		Subject:   strings.TrimSpace(input.Subject),
		ClassName: strings.TrimSpace(input.ClassName),
		Year:      strings.TrimSpace(input.Year),
		FileKey:   key,
		FileName:  input.FileName,
		MimeType:  input.MimeType,
		Size:      int64(len(input.Payload)),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		// The blob write already succeeded; the key is now an orphan.
		// There is no cross-call rollback, only the log line.
		logger.Error(ctx, "past question metadata write failed, blob orphaned",
			zap.String("file_key", key),
			zap.Error(err),
		)
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.PastQuestionCreateFailed)
	}

	return record, nil
}

// Get returns a single record by id.
func (s *PastQuestionService) Get(ctx context.Context, id int64) (*repository.PastQuestion, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPastQuestionNotFound) {
			return nil, pkgerrors.New(pkgerrors.PastQuestionNotFound)
		}
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.DatabaseError)
	}
	return record, nil
}

// List returns one page of records plus the total count over the filtered
// set.
func (s *PastQuestionService) List(ctx context.Context, filter query.Filter) (repository.ListResult, error) {
	result, err := s.repo.List(ctx, filter)
	if err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return repository.ListResult{}, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return repository.ListResult{}, pkgerrors.Wrap(err, pkgerrors.DatabaseError)
	}
	return result, nil
}

// Download resolves the record and opens the stored payload for streaming.
func (s *PastQuestionService) Download(ctx context.Context, id int64) (*repository.PastQuestion, io.ReadCloser, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.blobs.Fetch(ctx, record.FileKey)
	if err != nil {
		if pkgerrors.GetCode(err) == pkgerrors.BlobNotFound {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.Wrap(err, pkgerrors.InternalServerError)
	}
	return record, stream, nil
}

// Delete removes a record. The blob itself is kept; stored payloads have no
// independent lifecycle and are never garbage-collected here.
func (s *PastQuestionService) Delete(ctx context.Context, id int64) (*repository.PastQuestion, error) {
	record, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPastQuestionNotFound) {
			return nil, pkgerrors.New(pkgerrors.PastQuestionNotFound)
		}
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.PastQuestionDeleteFailed)
	}
	return record, nil
}

func fileTypeAllowed(fileName, mimeType string) bool {
	ext := strings.ToLower(path.Ext(fileName))
	return allowedMimeTypes[strings.ToLower(mimeType)] || allowedExtensions[ext]
}
