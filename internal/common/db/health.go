package db

import (
	"context"
	"sync"
	"time"
)

const (
	defaultProbeTimeout  = 2 * time.Second
	defaultProbeInterval = 3 * time.Second
)

// Health tracks whether the durable store is currently reachable. Every
// repository call consults it to pick between the durable and the in-memory
// path, so probe results are reused for a short interval rather than paying
// a network round trip per request.
type Health struct {
	mu        sync.Mutex
	db        Database
	timeout   time.Duration
	interval  time.Duration
	lastProbe time.Time
	lastOK    bool
}

// NewHealth creates a Health tracker for the given database. A nil database
// reports permanently unavailable, which is how the service runs when it
// starts in fallback mode.
func NewHealth(database Database) *Health {
	return &Health{
		db:       database,
		timeout:  defaultProbeTimeout,
		interval: defaultProbeInterval,
	}
}

// NewHealthWithIntervals creates a Health tracker with custom probe bounds.
func NewHealthWithIntervals(database Database, timeout, interval time.Duration) *Health {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	if interval < 0 {
		interval = 0
	}
	return &Health{db: database, timeout: timeout, interval: interval}
}

// Available reports whether the durable store should be used for this call.
func (h *Health) Available(ctx context.Context) bool {
	if h == nil || h.db == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if time.Since(h.lastProbe) < h.interval {
		return h.lastOK
	}

	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err := h.db.Ping(probeCtx)
	h.lastProbe = time.Now()
	h.lastOK = err == nil
	return h.lastOK
}

// Database returns the tracked database, which may be nil in fallback mode.
func (h *Health) Database() Database {
	if h == nil {
		return nil
	}
	return h.db
}
