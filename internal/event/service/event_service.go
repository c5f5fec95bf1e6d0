package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"examarchive/internal/common/imagecdn"
	"examarchive/internal/event/repository"
	pkgerrors "examarchive/pkg/errors"
	"examarchive/pkg/utils/logger"

	"go.uber.org/zap"
)

// imageFolder namespaces event images on the external host.
const imageFolder = "events"

// ImageHost is the slice of the image CDN client the event flows need.
type ImageHost interface {
	Enabled() bool
	Upload(ctx context.Context, payload []byte, folder string) (imagecdn.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// EventService implements the event operations on top of the dual-mode
// repository and the external image host.
type EventService struct {
	repo   repository.EventRepository
	images ImageHost
}

// NewEventService creates a new EventService. images may be nil when no
// image host is configured.
func NewEventService(repo repository.EventRepository, images ImageHost) *EventService {
	return &EventService{repo: repo, images: images}
}

// CreateInput carries a new event. ImagePayload is required on create.
type CreateInput struct {
	Title        string
	Description  string
	Date         string
	Location     string
	ImagePayload []byte
}

// UpdateInput carries a partial event update. Empty strings mean "keep the
// prior value", mirroring the merge semantics of the update endpoint.
type UpdateInput struct {
	Title        string
	Description  string
	Date         string
	Location     string
	ImagePayload []byte
}

// Create validates and persists a new event. An image file must be
// supplied; an image upload failure is logged and the event is created
// without an image, so the external host is never allowed to fail the
// primary operation.
func (s *EventService) Create(ctx context.Context, input CreateInput) (*repository.Event, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	location := strings.TrimSpace(input.Location)
	if title == "" || description == "" || strings.TrimSpace(input.Date) == "" || location == "" {
		return nil, pkgerrors.New(pkgerrors.RequiredFieldEmpty).
			WithMessage("Missing required fields: title, description, date, location")
	}
	if len(input.ImagePayload) == 0 {
		return nil, pkgerrors.New(pkgerrors.ImageRequired)
	}

	date, err := parseEventDate(input.Date)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.InvalidFormat).
			WithMessage("Date must be RFC3339 or YYYY-MM-DD")
	}

	now := time.Now().UTC()
	event := &repository.Event{
		Title:       title,
		Description: description,
		Date:        date,
		Location:    location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if s.images != nil && s.images.Enabled() {
		result, err := s.images.Upload(ctx, input.ImagePayload, imageFolder)
		if err != nil {
			logger.Warn(ctx, "event image upload failed, creating event without image",
				zap.Error(err),
			)
		} else {
			event.ImageURL = result.URL
			event.ImagePublicID = result.PublicID
		}
	}

	if err := s.repo.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.EventCreateFailed)
	}
	return event, nil
}

// Get returns a single event by id.
func (s *EventService) Get(ctx context.Context, id int64) (*repository.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, pkgerrors.New(pkgerrors.EventNotFound)
		}
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.DatabaseError)
	}
	return event, nil
}

// List returns events matching an optional free-text query, newest event
// date first.
func (s *EventService) List(ctx context.Context, q string) ([]*repository.Event, error) {
	events, err := s.repo.List(ctx, q)
	if err != nil {
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.DatabaseError)
	}
	return events, nil
}

// Update merges the supplied fields into the stored event. When a new image
// is supplied, the old hosted image is deleted best-effort before the new
// one is uploaded; a destroy failure never blocks the update.
func (s *EventService) Update(ctx context.Context, id int64, input UpdateInput) (*repository.Event, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	update := repository.EventUpdate{}
	if title := strings.TrimSpace(input.Title); title != "" {
		update.Title = &title
	}
	if description := strings.TrimSpace(input.Description); description != "" {
		update.Description = &description
	}
	if location := strings.TrimSpace(input.Location); location != "" {
		update.Location = &location
	}
	if strings.TrimSpace(input.Date) != "" {
		date, err := parseEventDate(input.Date)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.InvalidFormat).
				WithMessage("Date must be RFC3339 or YYYY-MM-DD")
		}
		update.Date = &date
	}

	if len(input.ImagePayload) > 0 && s.images != nil && s.images.Enabled() {
		s.destroyImage(ctx, existing.ImagePublicID)

		result, err := s.images.Upload(ctx, input.ImagePayload, imageFolder)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ImageUploadFailed)
		}
		update.ImageURL = &result.URL
		update.ImagePublicID = &result.PublicID
	}

	event, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, pkgerrors.New(pkgerrors.EventNotFound)
		}
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.EventUpdateFailed)
	}
	return event, nil
}

// Delete attempts to remove the hosted image first (best-effort), then
// deletes the record.
func (s *EventService) Delete(ctx context.Context, id int64) (*repository.Event, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.destroyImage(ctx, existing.ImagePublicID)

	event, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, pkgerrors.New(pkgerrors.EventNotFound)
		}
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, pkgerrors.New(pkgerrors.DatabaseUnreachable)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.EventDeleteFailed)
	}
	return event, nil
}

// destroyImage fires the external delete and swallows any failure. The
// hosted image is outside the transactional boundary of the record
// mutation.
func (s *EventService) destroyImage(ctx context.Context, publicID string) {
	if publicID == "" || s.images == nil || !s.images.Enabled() {
		return
	}
	if err := s.images.Destroy(ctx, publicID); err != nil {
		logger.Warn(ctx, "event image delete failed",
			zap.String("public_id", publicID),
			zap.Error(err),
		)
	}
}

// parseEventDate accepts RFC3339 timestamps or bare dates.
func parseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
