package query

import (
	"sort"
	"strings"
	"time"
)

const (
	// DefaultLimit is applied when a list request carries no limit.
	DefaultLimit = 20
	// MaxLimit caps a caller-supplied limit.
	MaxLimit = 100
)

// Filter is a loosely-typed list request: optional free-text query, optional
// exact/partial-match fields and pagination bounds. The zero value lists
// everything with default pagination.
type Filter struct {
	Q         string
	Subject   string
	ClassName string
	Year      string
	Limit     int
	Offset    int
}

// Normalized returns a copy with pagination defaults applied: limit 20,
// offset 0, limit capped at MaxLimit.
func (f Filter) Normalized() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// MatchText reports whether the free-text query is contained, case
// insensitively, in the concatenation of the searchable fields. This is the
// fallback-mode substitute for a full-text index; the two are not guaranteed
// to agree on result sets for the same query.
func MatchText(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	joined := strings.ToLower(strings.Join(fields, " "))
	return strings.Contains(joined, strings.ToLower(q))
}

// MatchPartial reports a case-insensitive substring match, used for subject
// and class-name filters in both modes.
func MatchPartial(filter, value string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}

// MatchExact reports exact string equality, used for the year filter.
func MatchExact(filter, value string) bool {
	if filter == "" {
		return true
	}
	return filter == value
}

// SortByTimeDesc stably sorts items newest-first by the given timestamp
// accessor. Stability preserves insertion order for ties.
func SortByTimeDesc[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}

// Slice applies offset/limit to an already filtered and sorted list.
func Slice[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
