package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func testCache(t *testing.T) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(mr.Addr())
	if err != nil {
		t.Fatalf("new redis cache: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.Close()
	})
	return cache, mr
}

func TestGetWithCachedFetchesOnceThenServesFromCache(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetWithCached(ctx, cache, "answer", time.Minute, time.Second,
			func(v int) bool { return v == 0 },
			strconv.Itoa,
			strconv.Atoi,
			fetch,
		)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if got != 42 {
			t.Fatalf("got %d, want 42", got)
		}
	}

	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
}

func TestGetWithCachedCachesEmptyResult(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (int, error) {
		calls++
		return 0, nil
	}

	for i := 0; i < 2; i++ {
		got, err := GetWithCached(ctx, cache, "missing", time.Minute, time.Second,
			func(v int) bool { return v == 0 },
			strconv.Itoa,
			strconv.Atoi,
			fetch,
		)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		if got != 0 {
			t.Fatalf("got %d, want 0", got)
		}
	}

	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1", calls)
	}
	if v, err := mr.Get("missing"); err != nil || v != NullCacheValue {
		t.Fatalf("cached value = %q, %v, want null sentinel", v, err)
	}
}

func TestGetWithCachedPropagatesFetchError(t *testing.T) {
	cache, _ := testCache(t)

	wantErr := errors.New("source down")
	_, err := GetWithCached(context.Background(), cache, "k", time.Minute, time.Second,
		func(v int) bool { return v == 0 },
		strconv.Itoa,
		strconv.Atoi,
		func(ctx context.Context) (int, error) { return 0, wantErr },
	)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestDeleteCachedInvalidates(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "stale", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	err := DeleteCached(ctx, cache, "k", func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("k") {
		t.Fatal("key still cached after delete")
	}
}

func TestDeleteCachedKeepsCacheOnSourceError(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	wantErr := errors.New("delete rejected")
	err := DeleteCached(ctx, cache, "k", func(ctx context.Context) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
	if !mr.Exists("k") {
		t.Fatal("cache invalidated although the source delete failed")
	}
}

func TestJitterTTLBounds(t *testing.T) {
	base := time.Minute
	for i := 0; i < 50; i++ {
		got := JitterTTL(base)
		if got < base || got > base+base/10 {
			t.Fatalf("jittered ttl %v outside [%v, %v]", got, base, base+base/10)
		}
	}
	if JitterTTL(0) != 0 {
		t.Error("zero ttl should pass through")
	}
}
