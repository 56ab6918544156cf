package query

import (
	"strings"
)

// State is the key-value filter state of one table page.
type State map[string]string

// Get returns the trimmed value for key, or "" when unset.
func (s State) Get(key string) string {
	return strings.TrimSpace(s[key])
}

// IsPlaceholder reports whether a filter value means "no filter".
func IsPlaceholder(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "All", "all":
		return true
	}
	return false
}

// Predicate decides whether a row passes one filter.
type Predicate[T any] func(T) bool

// Contains matches rows whose field contains needle, case-insensitively.
// Returns nil for a placeholder needle.
func Contains[T any](get func(T) string, needle string) Predicate[T] {
	if IsPlaceholder(needle) {
		return nil
	}
	n := strings.ToLower(strings.TrimSpace(needle))
	return func(row T) bool {
		return strings.Contains(strings.ToLower(get(row)), n)
	}
}

// Equals matches rows whose field equals value exactly.
// Returns nil for a placeholder value.
func Equals[T any](get func(T) string, value string) Predicate[T] {
	if IsPlaceholder(value) {
		return nil
	}
	v := strings.TrimSpace(value)
	return func(row T) bool {
		return get(row) == v
	}
}

// Between matches rows whose ISO-8601 date field lies in [from, to].
// Either bound may be a placeholder. The upper bound is compared against
// the value's prefix of the same length, so "2024-01-31" admits
// "2024-01-31 23:59". Rows with an empty field never match an active range.
// Values and bounds written as "2024-01-31T10:00" and "2024-01-31 10:00"
// compare equal.
func Between[T any](get func(T) string, from, to string) Predicate[T] {
	lo, hi := dateText(from), dateText(to)
	if IsPlaceholder(lo) {
		lo = ""
	}
	if IsPlaceholder(hi) {
		hi = ""
	}
	if lo == "" && hi == "" {
		return nil
	}
	return func(row T) bool {
		v := dateText(get(row))
		if v == "" {
			return false
		}
		if lo != "" && v < lo {
			return false
		}
		if hi != "" {
			prefix := v
			if len(prefix) > len(hi) {
				prefix = prefix[:len(hi)]
			}
			if prefix > hi {
				return false
			}
		}
		return true
	}
}

// dateText trims s and writes an ISO-8601 "T" date/time separator as a space.
func dateText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 && s[10] == 'T' {
		s = s[:10] + " " + s[11:]
	}
	return s
}

// Apply returns, in their original order, the rows that pass every non-nil
// predicate. The input slice is not modified.
func Apply[T any](rows []T, preds ...Predicate[T]) []T {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	out := make([]T, 0, len(rows))
rows:
	for _, row := range rows {
		for _, p := range active {
			if !p(row) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out
}
