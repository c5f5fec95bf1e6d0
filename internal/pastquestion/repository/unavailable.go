package repository

import (
	"context"
	"errors"

	"examarchive/internal/common/query"
)

// ErrStoreUnavailable is returned when the durable store is unreachable and
// the service is configured without an in-memory fallback.
var ErrStoreUnavailable = errors.New("record store unavailable")

// UnavailablePastQuestionRepository fails every operation. It stands in for
// the fallback slot of the dual repository when fallback is disallowed, so a
// store outage surfaces to callers instead of silently serving an empty
// collection.
type UnavailablePastQuestionRepository struct{}

// NewUnavailablePastQuestionRepository creates the failing stand-in.
func NewUnavailablePastQuestionRepository() UnavailablePastQuestionRepository {
	return UnavailablePastQuestionRepository{}
}

func (UnavailablePastQuestionRepository) Create(ctx context.Context, record *PastQuestion) error {
	return ErrStoreUnavailable
}

func (UnavailablePastQuestionRepository) GetByID(ctx context.Context, id int64) (*PastQuestion, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailablePastQuestionRepository) List(ctx context.Context, filter query.Filter) (ListResult, error) {
	return ListResult{}, ErrStoreUnavailable
}

func (UnavailablePastQuestionRepository) Delete(ctx context.Context, id int64) (*PastQuestion, error) {
	return nil, ErrStoreUnavailable
}
