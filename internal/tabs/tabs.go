// Package tabs tracks the admin pages each session has open, in the order
// they were opened, and which one is active. State is kept in memory only.
package tabs

import (
	"errors"
	"slices"
	"strings"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Registry errors.
var (
	ErrInvalidPage = errors.New("page must not be empty")
	ErrNotOpen     = errors.New("page is not open")
)

// State is a session's open tabs and the active one. Active is empty when
// no tab is open.
type State struct {
	Tabs   []string `json:"tabs" msgpack:"tabs"`
	Active string   `json:"active" msgpack:"active"`
}

type session struct {
	mu     sync.Mutex
	tabs   []string
	active string
}

func (s *session) state() State {
	return State{Tabs: slices.Clone(s.tabs), Active: s.active}
}

// Registry holds tab state per session ID. Safe for concurrent use.
type Registry struct {
	sessions cmap.ConcurrentMap[string, *session]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{sessions: cmap.New[*session]()}
}

func (r *Registry) session(id string) *session {
	return r.sessions.Upsert(id, nil, func(exist bool, cur, _ *session) *session {
		if exist {
			return cur
		}
		return &session{}
	})
}

// Open adds page to the session's tabs unless it is already there and
// makes it active.
func (r *Registry) Open(sessionID, page string) (State, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return State{}, ErrInvalidPage
	}
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.tabs, page) {
		s.tabs = append(s.tabs, page)
	}
	s.active = page
	return s.state(), nil
}

// Close removes page. Closing the active tab activates its right
// neighbour, or its left one when it was last. Closing a page that is not
// open changes nothing.
func (r *Registry) Close(sessionID, page string) State {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.tabs, page)
	if i < 0 {
		return s.state()
	}
	s.tabs = slices.Delete(s.tabs, i, i+1)
	if s.active == page {
		switch {
		case len(s.tabs) == 0:
			s.active = ""
		case i < len(s.tabs):
			s.active = s.tabs[i]
		default:
			s.active = s.tabs[i-1]
		}
	}
	return s.state()
}

// Activate makes an open page the active tab.
func (r *Registry) Activate(sessionID, page string) (State, error) {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.tabs, page) {
		return s.state(), ErrNotOpen
	}
	s.active = page
	return s.state(), nil
}

// CloseOthers closes every tab except page, which becomes active.
func (r *Registry) CloseOthers(sessionID, page string) (State, error) {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.tabs, page) {
		return s.state(), ErrNotOpen
	}
	s.tabs = []string{page}
	s.active = page
	return s.state(), nil
}

// List returns the session's tabs. Unknown sessions have none.
func (r *Registry) List(sessionID string) State {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return State{Tabs: []string{}}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Forget drops a session's state.
func (r *Registry) Forget(sessionID string) {
	r.sessions.Remove(sessionID)
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	return r.sessions.Count()
}
