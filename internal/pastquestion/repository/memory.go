package repository

import (
	"context"
	"sync"
	"time"

	"examarchive/internal/common/query"
)

// MemoryPastQuestionRepository is the in-process fallback collection used
// when the durable store is unreachable. Contents are lost on restart; that
// is the accepted availability trade-off. All mutations are serialized by a
// single mutex to keep ids unique under concurrent requests.
type MemoryPastQuestionRepository struct {
	mu      sync.RWMutex
	records []*PastQuestion
	nextID  int64
}

// NewMemoryPastQuestionRepository creates an empty fallback collection.
func NewMemoryPastQuestionRepository() *MemoryPastQuestionRepository {
	return &MemoryPastQuestionRepository{nextID: 1}
}

func (r *MemoryPastQuestionRepository) Create(ctx context.Context, record *PastQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.ID = r.nextID
	r.nextID++

	stored := *record
	r.records = append(r.records, &stored)
	return nil
}

func (r *MemoryPastQuestionRepository) GetByID(ctx context.Context, id int64) (*PastQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.ID == id {
			copied := *record
			return &copied, nil
		}
	}
	return nil, ErrPastQuestionNotFound
}

func (r *MemoryPastQuestionRepository) List(ctx context.Context, filter query.Filter) (ListResult, error) {
	filter = filter.Normalized()

	r.mu.RLock()
	matched := make([]*PastQuestion, 0, len(r.records))
	for _, record := range r.records {
		if !query.MatchText(filter.Q, record.Title, record.Subject, record.ClassName, record.Year) {
			continue
		}
		if !query.MatchExact(filter.Year, record.Year) {
			continue
		}
		if !query.MatchPartial(filter.Subject, record.Subject) {
			continue
		}
		if !query.MatchPartial(filter.ClassName, record.ClassName) {
			continue
		}
		copied := *record
		matched = append(matched, &copied)
	}
	r.mu.RUnlock()

	query.SortByTimeDesc(matched, func(record *PastQuestion) time.Time { return record.CreatedAt })

	return ListResult{
		Items: query.Slice(matched, filter.Limit, filter.Offset),
		Total: int64(len(matched)),
	}, nil
}

func (r *MemoryPastQuestionRepository) Delete(ctx context.Context, id int64) (*PastQuestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, record := range r.records {
		if record.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return record, nil
		}
	}
	return nil, ErrPastQuestionNotFound
}
