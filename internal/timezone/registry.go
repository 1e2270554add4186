package timezone

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/starford/tempus/internal/apperr"
)

// Lookup resolves ids the registry does not know natively, such as zones
// from a catalog directory. It reports false for unknown ids.
type Lookup func(id string) (TimeZone, bool)

// Registry resolves zone ids. IANA zones are memoized in an expiring cache;
// lookups are consulted first and never cached so that reloads show up.
type Registry struct {
	cache   *gocache.Cache
	lookups []Lookup
}

// NewRegistry returns a registry whose IANA entries live for ttl.
func NewRegistry(ttl time.Duration, lookups ...Lookup) *Registry {
	return &Registry{
		cache:   gocache.New(ttl, 2*ttl),
		lookups: lookups,
	}
}

// Get resolves "UTC", "Z", fixed offsets like "+05:30", catalog ids and
// IANA names, in that order.
func (r *Registry) Get(id string) (TimeZone, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("timezone: %w: empty id", apperr.ErrUnknownTimeZone)
	}
	if strings.EqualFold(id, UTCID) || id == "Z" || id == "z" {
		return UTC, nil
	}
	if id[0] == '+' || id[0] == '-' {
		off, err := ParseOffset(id)
		if err != nil {
			return nil, fmt.Errorf("timezone: %w: %q", apperr.ErrUnknownTimeZone, id)
		}
		return NewFixed(off), nil
	}
	for _, lookup := range r.lookups {
		if tz, ok := lookup(id); ok {
			return tz, nil
		}
	}
	if v, ok := r.cache.Get(id); ok {
		return v.(TimeZone), nil
	}
	loc, err := LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w: %q", apperr.ErrUnknownTimeZone, id)
	}
	r.cache.Set(id, loc, gocache.DefaultExpiration)
	return loc, nil
}

// Cached reports how many IANA zones are memoized.
func (r *Registry) Cached() int { return r.cache.ItemCount() }

// Flush drops every memoized zone.
func (r *Registry) Flush() { r.cache.Flush() }
