package repository

import (
	"context"
	"errors"
	"testing"
	"time"
)

func seedEvent(t *testing.T, repo *MemoryEventRepository, title string, date time.Time) *Event {
	t.Helper()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	event := &Event{
		Title:       title,
		Description: "description for " + title,
		Date:        date,
		Location:    "Main Hall",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), event); err != nil {
		t.Fatalf("create: %v", err)
	}
	return event
}

func TestMemoryEventRepositoryListSortsByEventDate(t *testing.T) {
	repo := NewMemoryEventRepository()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedEvent(t, repo, "middle", base.Add(24*time.Hour))
	seedEvent(t, repo, "latest", base.Add(48*time.Hour))
	seedEvent(t, repo, "earliest", base)

	events, err := repo.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	wantOrder := []string{"latest", "middle", "earliest"}
	if len(events) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(events), len(wantOrder))
	}
	for i, want := range wantOrder {
		if events[i].Title != want {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Title, want)
		}
	}
}

func TestMemoryEventRepositoryListQuery(t *testing.T) {
	repo := NewMemoryEventRepository()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	seedEvent(t, repo, "Open Day", base)
	seedEvent(t, repo, "Sports Festival", base)

	events, err := repo.List(context.Background(), "SPORTS")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Sports Festival" {
		t.Fatalf("events = %+v", events)
	}
}

func TestMemoryEventRepositoryUpdateMergesFields(t *testing.T) {
	repo := NewMemoryEventRepository()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := seedEvent(t, repo, "Open Day", base)

	newLocation := "Sports Field"
	updated, err := repo.Update(context.Background(), created.ID, EventUpdate{Location: &newLocation})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Location != newLocation {
		t.Errorf("location = %q", updated.Location)
	}
	if updated.Title != created.Title || !updated.Date.Equal(created.Date) {
		t.Errorf("unrelated fields changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("updated_at not refreshed: %v", updated.UpdatedAt)
	}
}

func TestMemoryEventRepositoryUpdateMissing(t *testing.T) {
	repo := NewMemoryEventRepository()
	title := "x"
	if _, err := repo.Update(context.Background(), 7, EventUpdate{Title: &title}); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
}

func TestMemoryEventRepositoryDelete(t *testing.T) {
	repo := NewMemoryEventRepository()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := seedEvent(t, repo, "Open Day", base)

	deleted, err := repo.Delete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted id = %d", deleted.ID)
	}
	if _, err := repo.GetByID(context.Background(), created.ID); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
