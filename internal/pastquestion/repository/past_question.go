package repository

import (
	"context"
	"errors"
	"time"

	"examarchive/internal/common/query"
)

var ErrPastQuestionNotFound = errors.New("past question not found")

// PastQuestion represents one uploaded document. Identity is generated by
// the durable store (auto-increment) or by the fallback collection
// (monotonic counter); the external shape is identical either way.
type PastQuestion struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject,omitempty"`
	ClassName string    `json:"class_name,omitempty"`
	Year      string    `json:"year,omitempty"`
	FileKey   string    `json:"file_key"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResult carries one page of records plus the total count over the
// filtered (pre-pagination) set.
type ListResult struct {
	Items []*PastQuestion `json:"items"`
	Total int64           `json:"total"`
}

// PastQuestionRepository is the persistence contract for past questions.
// Both the MySQL-backed and the in-memory implementations satisfy it with
// indistinguishable result shapes.
type PastQuestionRepository interface {
	// Create assigns identity, persists and fills in the stored record.
	// CreatedAt must be set by the caller so both modes emit the same value.
	Create(ctx context.Context, record *PastQuestion) error

	// GetByID returns the record or ErrPastQuestionNotFound.
	GetByID(ctx context.Context, id int64) (*PastQuestion, error)

	// List applies the filter, sorts newest-first by creation time and
	// paginates. Total counts the filtered set before pagination.
	List(ctx context.Context, filter query.Filter) (ListResult, error)

	// Delete removes the record and returns it, or ErrPastQuestionNotFound.
	Delete(ctx context.Context, id int64) (*PastQuestion, error)
}
