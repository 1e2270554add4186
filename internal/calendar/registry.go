package calendar

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/starford/tempus/internal/apperr"
)

// Registry maps calendar ids to implementations.
type Registry struct {
	mu   sync.RWMutex
	cals map[string]Calendar
}

// NewRegistry returns a registry holding the built-in calendars plus extra.
func NewRegistry(extra ...Calendar) *Registry {
	r := &Registry{cals: make(map[string]Calendar)}
	r.Register(NewISO())
	r.Register(NewGregorian())
	for _, c := range extra {
		r.Register(c)
	}
	return r
}

// Register adds or replaces c under its id.
func (r *Registry) Register(c Calendar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cals[strings.ToLower(c.ID())] = c
}

// Get resolves an id case-insensitively. An empty id means iso8601.
func (r *Registry) Get(id string) (Calendar, error) {
	if id == "" {
		id = ISO8601
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cals[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("calendar: %w: %q", apperr.ErrUnknownCalendar, id)
	}
	return c, nil
}

// IDs lists registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.cals))
	for id := range r.cals {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
