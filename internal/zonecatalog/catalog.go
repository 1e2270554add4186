// Package zonecatalog loads user-defined transition zones from a directory of
// YAML files and keeps them current while the files change.
package zonecatalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/metrics"
	"github.com/starford/tempus/internal/models"
	"github.com/starford/tempus/internal/timezone"
)

type entry struct {
	zone *timezone.Table
	file fileMeta
}

// Catalog is a hot-swappable set of zones. Readers see either the old or
// the new set, never a mix.
type Catalog struct {
	src     *source
	logger  *slog.Logger
	metrics *metrics.Collector

	mu    sync.RWMutex
	zones map[string]entry
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// WithMetrics reports catalog size and reload results to m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Catalog) { c.metrics = m }
}

// Open loads every zone under dir. Files that fail to parse are logged and
// skipped; the returned error joins their failures.
func Open(dir string, opts ...Option) (*Catalog, error) {
	src, err := newSource(dir)
	if err != nil {
		return nil, err
	}
	c := &Catalog{src: src, logger: slog.Default(), zones: map[string]entry{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, c.Sync()
}

// Sync rescans the directory. Unchanged files keep their parsed zone,
// changed files are parsed again and removed files drop out.
func (c *Catalog) Sync() error {
	metas, err := c.src.list()
	if err != nil {
		c.metrics.CatalogLoaded(c.Len(), err)
		return err
	}

	c.mu.RLock()
	byPath := make(map[string]entry, len(c.zones))
	for _, e := range c.zones {
		byPath[e.file.Path] = e
	}
	c.mu.RUnlock()

	next := make(map[string]entry, len(metas))
	var errs []error
	for _, m := range metas {
		e, ok := byPath[m.Path]
		if !ok || e.file.Checksum != m.Checksum {
			zone, err := c.load(m.Path)
			if err != nil {
				c.logger.Warn("zonecatalog: load failed", slog.String("path", m.Path), slog.String("error", err.Error()))
				errs = append(errs, err)
				continue
			}
			e = entry{zone: zone, file: m}
		}
		if prev, dup := next[e.zone.ID()]; dup {
			err := fmt.Errorf("zonecatalog: %w: zone %s defined in %s and %s",
				apperr.ErrInvalidFieldCombination, e.zone.ID(), prev.file.Path, m.Path)
			c.logger.Warn("zonecatalog: duplicate zone", slog.String("path", m.Path), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		next[e.zone.ID()] = e
	}

	c.mu.Lock()
	c.zones = next
	c.mu.Unlock()

	err = errors.Join(errs...)
	c.metrics.CatalogLoaded(len(next), err)
	c.logger.Debug("zonecatalog: synced", slog.Int("zones", len(next)), slog.Int("failed", len(errs)))
	return err
}

func (c *Catalog) load(path string) (*timezone.Table, error) {
	data, err := c.src.read(path)
	if err != nil {
		return nil, err
	}
	zone, err := parseZone(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return zone, nil
}

// Lookup resolves a catalog zone. It has the shape timezone.Registry expects.
func (c *Catalog) Lookup(id string) (timezone.TimeZone, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.zones[id]
	if !ok {
		return nil, false
	}
	return e.zone, true
}

// Len reports the number of loaded zones.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.zones)
}

// Zones describes every loaded zone.
func (c *Catalog) Zones() []models.ZoneInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ZoneInfo, 0, len(c.zones))
	for id, e := range c.zones {
		out = append(out, models.ZoneInfo{
			ID:          id,
			File:        e.file.Path,
			Checksum:    e.file.Checksum,
			Transitions: len(e.zone.Transitions()),
		})
	}
	return out
}
