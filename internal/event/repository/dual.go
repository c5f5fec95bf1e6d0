package repository

import "context"

// Selector reports, per call, whether the durable store should serve the
// operation. db.Health.Available satisfies it.
type Selector func(ctx context.Context) bool

// DualEventRepository routes every operation to the durable repository when
// the store is reachable and to the in-process fallback otherwise.
type DualEventRepository struct {
	durable   EventRepository
	fallback  EventRepository
	available Selector
}

// NewDualEventRepository wires the two modes behind one contract. The
// selector is re-evaluated on every call.
func NewDualEventRepository(durable, fallback EventRepository, available Selector) *DualEventRepository {
	return &DualEventRepository{
		durable:   durable,
		fallback:  fallback,
		available: available,
	}
}

func (r *DualEventRepository) pick(ctx context.Context) EventRepository {
	if r.durable != nil && r.available != nil && r.available(ctx) {
		return r.durable
	}
	return r.fallback
}

func (r *DualEventRepository) Create(ctx context.Context, event *Event) error {
	return r.pick(ctx).Create(ctx, event)
}

func (r *DualEventRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	return r.pick(ctx).GetByID(ctx, id)
}

func (r *DualEventRepository) List(ctx context.Context, q string) ([]*Event, error) {
	return r.pick(ctx).List(ctx, q)
}

func (r *DualEventRepository) Update(ctx context.Context, id int64, update EventUpdate) (*Event, error) {
	return r.pick(ctx).Update(ctx, id, update)
}

func (r *DualEventRepository) Delete(ctx context.Context, id int64) (*Event, error) {
	return r.pick(ctx).Delete(ctx, id)
}
