// Package calcservice exposes the engine to the outer surfaces. It decodes
// wire records, resolves calendars and zones once per request, runs one
// engine operation and encodes the result.
package calcservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/engine"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/metrics"
	"github.com/starford/tempus/internal/models"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/temporal"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/units"
)

// Operation names, shared by the metrics labels and the CLI --op flag.
const (
	OpAdd             = "add"
	OpSubtract        = "subtract"
	OpUntil           = "until"
	OpSince           = "since"
	OpRound           = "round"
	OpDurationRound   = "duration.round"
	OpDurationTotal   = "duration.total"
	OpDurationAdd     = "duration.add"
	OpDurationCompare = "duration.compare"
	OpResolve         = "resolve"
	OpDay             = "day"
	OpWith            = "with"
)

// Catalog lists user-defined zones.
type Catalog interface {
	Zones() []models.ZoneInfo
}

// Service runs calculator requests.
type Service struct {
	calendars *calendar.Registry
	zones     *timezone.Registry
	catalog   Catalog
	metrics   *metrics.Collector
	logger    *slog.Logger
	onViolate func(op string, err error)

	defaultCalendar string
	defaultTimeZone string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for contract violations.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records every operation in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// WithCatalog lets ListZones report catalog zones.
func WithCatalog(c Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithViolationHook calls fn for every calendar or zone contract violation.
func WithViolationHook(fn func(op string, err error)) Option {
	return func(s *Service) { s.onViolate = fn }
}

// WithDefaultCalendar sets the calendar used when a record names none.
func WithDefaultCalendar(id string) Option {
	return func(s *Service) { s.defaultCalendar = id }
}

// WithDefaultTimeZone sets the zone used when a zoned record names none.
func WithDefaultTimeZone(id string) Option {
	return func(s *Service) { s.defaultTimeZone = id }
}

// NewService creates a new calculator service.
func NewService(calendars *calendar.Registry, zones *timezone.Registry, opts ...Option) *Service {
	s := &Service{
		calendars:       calendars,
		zones:           zones,
		logger:          slog.Default(),
		defaultCalendar: calendar.ISO8601,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) calendar(id string) (calendar.Calendar, error) {
	if id == "" {
		id = s.defaultCalendar
	}
	return s.calendars.Get(id)
}

func (s *Service) zone(id string) (timezone.TimeZone, error) {
	if id == "" {
		id = s.defaultTimeZone
	}
	return s.zones.Get(id)
}

// observe records the outcome of op and logs contract violations.
func (s *Service) observe(op string, started time.Time, err error) {
	s.metrics.Observe(op, started, err)
	if apperr.IsContractViolation(err) {
		s.logger.Error("calendar or zone broke its contract",
			slog.String("op", op),
			slog.String("error", err.Error()))
		if s.onViolate != nil {
			s.onViolate(op, err)
		}
	}
}

var defaultZoned = options.ZonedFieldSettings{
	Overflow:       options.Constrain,
	Offset:         options.OffsetReject,
	Disambiguation: options.Compatible,
}

// Add moves a value forward by a duration.
func (s *Service) Add(ctx context.Context, req models.ArithmeticRequest) (models.ValueResponse, error) {
	return s.arithmetic(ctx, OpAdd, req)
}

// Subtract moves a value backward by a duration.
func (s *Service) Subtract(ctx context.Context, req models.ArithmeticRequest) (models.ValueResponse, error) {
	return s.arithmetic(ctx, OpSubtract, req)
}

func (s *Service) arithmetic(_ context.Context, op string, req models.ArithmeticRequest) (resp models.ValueResponse, err error) {
	defer func(started time.Time) { s.observe(op, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	overflow, err := options.ParseOverflow(req.Overflow, options.Constrain)
	if err != nil {
		return resp, err
	}
	zo := defaultZoned
	zo.Overflow = overflow
	v, err := s.decode(req.Value, zo)
	if err != nil {
		return resp, err
	}
	d, err := durationOf(req.Duration)
	if err != nil {
		return resp, err
	}
	var out temporal.Value
	if op == OpSubtract {
		out, err = temporal.Subtract(v, d, overflow)
	} else {
		out, err = temporal.Add(v, d, overflow)
	}
	if err != nil {
		return resp, err
	}
	resp.Value, err = encode(out)
	return resp, err
}

// Until measures from req.One to req.Other.
func (s *Service) Until(ctx context.Context, req models.DifferenceRequest) (models.DurationResponse, error) {
	return s.difference(ctx, OpUntil, engine.Until, req)
}

// Since measures from req.Other to req.One.
func (s *Service) Since(ctx context.Context, req models.DifferenceRequest) (models.DurationResponse, error) {
	return s.difference(ctx, OpSince, engine.Since, req)
}

func (s *Service) difference(_ context.Context, op string, dir engine.Direction, req models.DifferenceRequest) (resp models.DurationResponse, err error) {
	defer func(started time.Time) { s.observe(op, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	a, err := s.decode(req.One, defaultZoned)
	if err != nil {
		return resp, err
	}
	b, err := s.decode(req.Other, defaultZoned)
	if err != nil {
		return resp, err
	}
	resp.Duration, err = temporal.Difference(a, b, dir, req.Options)
	return resp, err
}

// Round rounds a date-time, zoned value, instant or time.
func (s *Service) Round(_ context.Context, req models.RoundRequest) (resp models.ValueResponse, err error) {
	defer func(started time.Time) { s.observe(OpRound, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	v, err := s.decode(req.Value, defaultZoned)
	if err != nil {
		return resp, err
	}
	out, err := temporal.Round(v, req.Options)
	if err != nil {
		return resp, err
	}
	resp.Value, err = encode(out)
	return resp, err
}

// DurationRound rounds and balances a duration.
func (s *Service) DurationRound(_ context.Context, req models.DurationRoundRequest) (resp models.DurationResponse, err error) {
	defer func(started time.Time) { s.observe(OpDurationRound, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	rel, err := s.relativeTo(req.RelativeTo)
	if err != nil {
		return resp, err
	}
	resp.Duration, err = engine.RoundDuration(req.Duration, req.Options, rel)
	return resp, err
}

// DurationTotal expresses a duration in one unit.
func (s *Service) DurationTotal(_ context.Context, req models.DurationTotalRequest) (resp models.TotalResponse, err error) {
	defer func(started time.Time) { s.observe(OpDurationTotal, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	rel, err := s.relativeTo(req.RelativeTo)
	if err != nil {
		return resp, err
	}
	resp.Unit = req.Options.Unit
	resp.Total, err = engine.TotalDuration(req.Duration, req.Options, rel)
	return resp, err
}

// DurationAdd adds or subtracts two durations.
func (s *Service) DurationAdd(_ context.Context, req models.DurationPairRequest) (resp models.DurationResponse, err error) {
	defer func(started time.Time) { s.observe(OpDurationAdd, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	rel, err := s.relativeTo(req.RelativeTo)
	if err != nil {
		return resp, err
	}
	resp.Duration, err = engine.AddDurations(req.One, req.Other, req.Subtract, rel)
	return resp, err
}

// DurationCompare orders two durations.
func (s *Service) DurationCompare(_ context.Context, req models.DurationPairRequest) (resp models.CompareResponse, err error) {
	defer func(started time.Time) { s.observe(OpDurationCompare, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	rel, err := s.relativeTo(req.RelativeTo)
	if err != nil {
		return resp, err
	}
	resp.Result, err = engine.CompareDurations(req.One, req.Other, rel)
	return resp, err
}

func (s *Service) relativeTo(r *models.ValueRecord) (*engine.RelativeTo, error) {
	if r == nil {
		return nil, nil
	}
	v, err := s.decode(*r, defaultZoned)
	if err != nil {
		return nil, err
	}
	return temporal.RelativeTo(v)
}

// Resolve turns local fields in a zone into an exact instant, honoring the
// offset and disambiguation policies.
func (s *Service) Resolve(_ context.Context, req models.ResolveRequest) (resp models.ValueResponse, err error) {
	defer func(started time.Time) { s.observe(OpResolve, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	zo, err := options.RefineZonedFieldOptions(req.Options, false)
	if err != nil {
		return resp, err
	}
	rec := req.Value
	rec.EpochNanoseconds = ""
	v, err := s.decode(rec, zo)
	if err != nil {
		return resp, err
	}
	resp.Value, err = encode(v)
	return resp, err
}

// Day reports when a local date starts in a zone and how long it lasts.
func (s *Service) Day(_ context.Context, zoneID string, date iso.Date) (resp models.DayResponse, err error) {
	defer func(started time.Time) { s.observe(OpDay, started, err) }(time.Now())

	if err = iso.CheckDate(date); err != nil {
		return resp, err
	}
	tz, err := s.zone(zoneID)
	if err != nil {
		return resp, err
	}
	cal, err := s.calendar("")
	if err != nil {
		return resp, err
	}
	start, err := timezone.StartOfDay(tz, date)
	if err != nil {
		return resp, err
	}
	z := temporal.ZonedDateTime{Epoch: start, TimeZone: tz, Calendar: cal}
	if resp.HoursInDay, err = z.HoursInDay(); err != nil {
		return resp, err
	}
	resp.TimeZone = tz.ID()
	resp.Start, err = encode(z)
	return resp, err
}

// Calculate runs the operation named op on a request already decoded into
// the matching models type.
func (s *Service) Calculate(ctx context.Context, op string, req any) (any, error) {
	switch r := req.(type) {
	case *models.ArithmeticRequest:
		switch op {
		case OpAdd:
			return s.Add(ctx, *r)
		case OpSubtract:
			return s.Subtract(ctx, *r)
		}
	case *models.DifferenceRequest:
		switch op {
		case OpUntil:
			return s.Until(ctx, *r)
		case OpSince:
			return s.Since(ctx, *r)
		}
	case *models.RoundRequest:
		return s.Round(ctx, *r)
	case *models.DurationRoundRequest:
		return s.DurationRound(ctx, *r)
	case *models.DurationTotalRequest:
		return s.DurationTotal(ctx, *r)
	case *models.DurationPairRequest:
		switch op {
		case OpDurationAdd:
			return s.DurationAdd(ctx, *r)
		case OpDurationCompare:
			return s.DurationCompare(ctx, *r)
		}
	case *models.ResolveRequest:
		return s.Resolve(ctx, *r)
	case *models.WithRequest:
		return s.With(ctx, *r)
	}
	return nil, fmt.Errorf("calcservice: %w: operation %q", apperr.ErrInvalidOption, op)
}

// NewRequest returns an empty request value for op, ready to be decoded into.
func NewRequest(op string) (any, error) {
	switch op {
	case OpAdd, OpSubtract:
		return &models.ArithmeticRequest{}, nil
	case OpUntil, OpSince:
		return &models.DifferenceRequest{}, nil
	case OpRound:
		return &models.RoundRequest{}, nil
	case OpDurationRound:
		return &models.DurationRoundRequest{}, nil
	case OpDurationTotal:
		return &models.DurationTotalRequest{}, nil
	case OpDurationAdd, OpDurationCompare:
		return &models.DurationPairRequest{}, nil
	case OpResolve:
		return &models.ResolveRequest{}, nil
	case OpWith:
		return &models.WithRequest{}, nil
	}
	return nil, fmt.Errorf("calcservice: %w: operation %q (want one of %v)", apperr.ErrInvalidOption, op, Operations())
}

// Operations lists the op names accepted by NewRequest.
func Operations() []string {
	return []string{
		OpAdd, OpSubtract, OpUntil, OpSince, OpRound,
		OpDurationRound, OpDurationTotal, OpDurationAdd, OpDurationCompare, OpResolve, OpWith,
	}
}

// ListZones returns catalog zones sorted by id.
func (s *Service) ListZones(_ context.Context) []models.ZoneInfo {
	if s.catalog == nil {
		return []models.ZoneInfo{}
	}
	zones := s.catalog.Zones()
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return nonNilSlice(zones)
}

// Calendars lists the registered calendar ids.
func (s *Service) Calendars() []string { return s.calendars.IDs() }

// Options describes every accepted option name, keyed by option.
func Options() map[string][]string {
	unitNames := make([]string, 0, len(units.All))
	for _, u := range units.All {
		unitNames = append(unitNames, u.String())
	}
	return map[string][]string{
		"unit":           unitNames,
		"roundingMode":   options.RoundingModeNames(),
		"overflow":       options.OverflowNames(),
		"offset":         options.OffsetNames(),
		"disambiguation": options.DisambiguationNames(),
		"kind":           temporal.KindNames(),
		"operation":      Operations(),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
