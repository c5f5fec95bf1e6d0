package repository

import (
	"context"
	"testing"
	"time"

	"examarchive/internal/common/query"
)

func TestDualRepositoryRoutesPerCall(t *testing.T) {
	durable := NewMemoryPastQuestionRepository()
	fallback := NewMemoryPastQuestionRepository()

	useDurable := true
	dual := NewDualPastQuestionRepository(durable, fallback, func(ctx context.Context) bool {
		return useDurable
	})

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	durableRecord := &PastQuestion{Title: "durable paper", CreatedAt: base}
	if err := dual.Create(context.Background(), durableRecord); err != nil {
		t.Fatalf("create durable: %v", err)
	}

	useDurable = false
	fallbackRecord := &PastQuestion{Title: "fallback paper", CreatedAt: base}
	if err := dual.Create(context.Background(), fallbackRecord); err != nil {
		t.Fatalf("create fallback: %v", err)
	}

	// Each mode only sees its own writes.
	result, err := fallback.List(context.Background(), query.Filter{})
	if err != nil {
		t.Fatalf("list fallback: %v", err)
	}
	if result.Total != 1 || result.Items[0].Title != "fallback paper" {
		t.Fatalf("fallback contents wrong: %+v", result)
	}

	useDurable = true
	result, err = dual.List(context.Background(), query.Filter{})
	if err != nil {
		t.Fatalf("list via dual: %v", err)
	}
	if result.Total != 1 || result.Items[0].Title != "durable paper" {
		t.Fatalf("durable contents wrong: %+v", result)
	}
}

func TestDualRepositoryWithoutDurableUsesFallback(t *testing.T) {
	fallback := NewMemoryPastQuestionRepository()
	dual := NewDualPastQuestionRepository(nil, fallback, func(ctx context.Context) bool {
		return false
	})

	record := &PastQuestion{Title: "paper", CreatedAt: time.Now().UTC()}
	if err := dual.Create(context.Background(), record); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := dual.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "paper" {
		t.Fatalf("title = %q, want paper", got.Title)
	}
}
