package query

import (
	"slices"
	"sort"
)

// Kind selects how a filter key is matched.
type Kind int

const (
	// Substring is a case-insensitive contains match.
	Substring Kind = iota
	// Exact is an equality match on an enum-like field.
	Exact
	// Range is an inclusive date range read from <key>_from and <key>_to.
	Range
)

// Range bound suffixes.
const (
	FromSuffix = "_from"
	ToSuffix   = "_to"
)

// Field binds one filter key to a row accessor.
type Field[T any] struct {
	Kind Kind
	Get  func(T) string
}

// Schema maps filter keys to fields for one row type.
type Schema[T any] map[string]Field[T]

// Compile turns filter state into predicates. Keys the schema does not know
// are ignored, as are placeholder values. Keys are visited in sorted order
// so the predicate list is deterministic.
func (s Schema[T]) Compile(state State) []Predicate[T] {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var preds []Predicate[T]
	for _, key := range keys {
		f := s[key]
		var p Predicate[T]
		switch f.Kind {
		case Substring:
			p = Contains(f.Get, state.Get(key))
		case Exact:
			p = Equals(f.Get, state.Get(key))
		case Range:
			p = Between(f.Get, state.Get(key+FromSuffix), state.Get(key+ToSuffix))
		}
		if p != nil {
			preds = append(preds, p)
		}
	}
	return preds
}

// Keys returns the filter keys a client may send, with range fields
// expanded to their _from/_to pair.
func (s Schema[T]) Keys() []string {
	var keys []string
	for k, f := range s {
		if f.Kind == Range {
			keys = append(keys, k+FromSuffix, k+ToSuffix)
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SortBySort orders rows by their sort key ascending. Ties keep their
// original order.
func SortBySort[T any](rows []T, key func(T) int) {
	sort.SliceStable(rows, func(i, j int) bool {
		return key(rows[i]) < key(rows[j])
	})
}
