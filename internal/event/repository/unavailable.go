package repository

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned when the durable store is unreachable and
// the service is configured without an in-memory fallback.
var ErrStoreUnavailable = errors.New("record store unavailable")

// UnavailableEventRepository fails every operation, standing in for the
// fallback slot when fallback is disallowed.
type UnavailableEventRepository struct{}

// NewUnavailableEventRepository creates the failing stand-in.
func NewUnavailableEventRepository() UnavailableEventRepository {
	return UnavailableEventRepository{}
}

func (UnavailableEventRepository) Create(ctx context.Context, event *Event) error {
	return ErrStoreUnavailable
}

func (UnavailableEventRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableEventRepository) List(ctx context.Context, q string) ([]*Event, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableEventRepository) Update(ctx context.Context, id int64, update EventUpdate) (*Event, error) {
	return nil, ErrStoreUnavailable
}

func (UnavailableEventRepository) Delete(ctx context.Context, id int64) (*Event, error) {
	return nil, ErrStoreUnavailable
}
