package repository

import (
	"context"
	"sync"
	"time"

	"examarchive/internal/common/query"
)

// MemoryEventRepository is the in-process fallback collection for events,
// used when the durable store is unreachable. Lost on restart by design.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events []*Event
	nextID int64
}

// NewMemoryEventRepository creates an empty fallback collection.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{nextID: 1}
}

func (r *MemoryEventRepository) Create(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++

	stored := *event
	r.events = append(r.events, &stored)
	return nil
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, event := range r.events {
		if event.ID == id {
			copied := *event
			return &copied, nil
		}
	}
	return nil, ErrEventNotFound
}

func (r *MemoryEventRepository) List(ctx context.Context, q string) ([]*Event, error) {
	r.mu.RLock()
	matched := make([]*Event, 0, len(r.events))
	for _, event := range r.events {
		if !query.MatchText(q, event.Title, event.Description, event.Location) {
			continue
		}
		copied := *event
		matched = append(matched, &copied)
	}
	r.mu.RUnlock()

	query.SortByTimeDesc(matched, func(event *Event) time.Time { return event.Date })
	return matched, nil
}

func (r *MemoryEventRepository) Update(ctx context.Context, id int64, update EventUpdate) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, event := range r.events {
		if event.ID != id {
			continue
		}
		if update.Title != nil {
			event.Title = *update.Title
		}
		if update.Description != nil {
			event.Description = *update.Description
		}
		if update.Date != nil {
			event.Date = *update.Date
		}
		if update.Location != nil {
			event.Location = *update.Location
		}
		if update.ImageURL != nil {
			event.ImageURL = *update.ImageURL
		}
		if update.ImagePublicID != nil {
			event.ImagePublicID = *update.ImagePublicID
		}
		event.UpdatedAt = time.Now().UTC()

		copied := *event
		return &copied, nil
	}
	return nil, ErrEventNotFound
}

func (r *MemoryEventRepository) Delete(ctx context.Context, id int64) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, event := range r.events {
		if event.ID == id {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return event, nil
		}
	}
	return nil, ErrEventNotFound
}
