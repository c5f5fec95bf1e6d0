package repository

import (
	"context"
	"errors"
	"time"
)

var ErrEventNotFound = errors.New("event not found")

// Event represents a calendar/announcement entry, optionally carrying an
// externally hosted image. ImagePublicID identifies that image for later
// deletion on the host.
type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	ImageURL      string    `json:"image_url,omitempty"`
	ImagePublicID string    `json:"image_public_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EventUpdate carries a partial update: nil fields keep their prior values.
type EventUpdate struct {
	Title         *string
	Description   *string
	Date          *time.Time
	Location      *string
	ImageURL      *string
	ImagePublicID *string
}

// EventRepository is the persistence contract for events, satisfied by both
// the MySQL-backed and the in-memory implementations.
type EventRepository interface {
	// Create assigns identity and persists. CreatedAt/UpdatedAt must be set
	// by the caller so both modes emit the same values.
	Create(ctx context.Context, event *Event) error

	// GetByID returns the event or ErrEventNotFound.
	GetByID(ctx context.Context, id int64) (*Event, error)

	// List returns all events matching the optional free-text query, sorted
	// by event date descending.
	List(ctx context.Context, q string) ([]*Event, error)

	// Update merges the supplied fields only, refreshes UpdatedAt and
	// returns the stored event, or ErrEventNotFound.
	Update(ctx context.Context, id int64, update EventUpdate) (*Event, error)

	// Delete removes the event and returns it, or ErrEventNotFound.
	Delete(ctx context.Context, id int64) (*Event, error)
}
