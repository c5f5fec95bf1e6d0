package repository

import (
	"context"

	"examarchive/internal/common/query"
)

// Selector reports, per call, whether the durable store should serve the
// operation. db.Health.Available satisfies it.
type Selector func(ctx context.Context) bool

// DualPastQuestionRepository routes every operation to the durable
// repository when the store is reachable and to the in-process fallback
// otherwise. Callers never learn which mode served a request; both branches
// expose identical result shapes.
type DualPastQuestionRepository struct {
	durable   PastQuestionRepository
	fallback  PastQuestionRepository
	available Selector
}

// NewDualPastQuestionRepository wires the two modes behind one contract.
// The selector is re-evaluated on every call.
func NewDualPastQuestionRepository(durable, fallback PastQuestionRepository, available Selector) *DualPastQuestionRepository {
	return &DualPastQuestionRepository{
		durable:   durable,
		fallback:  fallback,
		available: available,
	}
}

func (r *DualPastQuestionRepository) pick(ctx context.Context) PastQuestionRepository {
	if r.durable != nil && r.available != nil && r.available(ctx) {
		return r.durable
	}
	return r.fallback
}

func (r *DualPastQuestionRepository) Create(ctx context.Context, record *PastQuestion) error {
	return r.pick(ctx).Create(ctx, record)
}

func (r *DualPastQuestionRepository) GetByID(ctx context.Context, id int64) (*PastQuestion, error) {
	return r.pick(ctx).GetByID(ctx, id)
}

func (r *DualPastQuestionRepository) List(ctx context.Context, filter query.Filter) (ListResult, error) {
	return r.pick(ctx).List(ctx, filter)
}

func (r *DualPastQuestionRepository) Delete(ctx context.Context, id int64) (*PastQuestion, error) {
	return r.pick(ctx).Delete(ctx, id)
}
