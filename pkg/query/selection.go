package query

import "slices"

// Selection is the set of checked row IDs on a table page.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns a selection holding ids.
func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Toggle flips one id.
func (s *Selection) Toggle(id string) {
	if s.Has(id) {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll toggles the visible rows as a group: if every visible id is
// already selected they are all cleared, otherwise they are all selected.
// IDs outside visible are untouched.
func (s *Selection) SelectAll(visible []string) {
	all := len(visible) > 0
	for _, id := range visible {
		if !s.Has(id) {
			all = false
			break
		}
	}
	for _, id := range visible {
		if all {
			delete(s.ids, id)
		} else {
			s.ids[id] = struct{}{}
		}
	}
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clear empties the selection.
func (s *Selection) Clear() {
	clear(s.ids)
}
