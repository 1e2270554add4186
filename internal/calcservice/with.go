package calcservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/models"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/temporal"
	"github.com/starford/tempus/internal/timezone"
)

var (
	yearMonthNames = []string{calendar.FieldYear, calendar.FieldMonth, calendar.FieldMonthCode}
	dateNames      = append(append([]string(nil), yearMonthNames...), calendar.FieldDay)
)

// With replaces some fields of a value and resolves it again. Date fields are
// merged by the value's calendar, so a new month drops the old month code and
// a new era year drops the old year. Zoned values keep their offset when it
// is still valid for the new local time (offset "prefer" by default).
func (s *Service) With(_ context.Context, req models.WithRequest) (resp models.ValueResponse, err error) {
	defer func(started time.Time) { s.observe(OpWith, started, err) }(time.Now())

	if err = req.Validate(); err != nil {
		return resp, err
	}
	zo, err := options.RefineZonedFieldOptions(req.Options, true)
	if err != nil {
		return resp, err
	}
	v, err := s.decode(req.Value, zo)
	if err != nil {
		return resp, err
	}
	base, err := encode(v)
	if err != nil {
		return resp, err
	}
	p := req.Fields

	var out temporal.Value
	switch x := v.(type) {
	case temporal.PlainTime:
		if !p.HasClock() {
			return resp, errNothingToChange(x.Kind())
		}
		var t iso.Time
		if t, err = iso.RegulateTime(patchClock(base, p), zo.Overflow); err == nil {
			out = temporal.PlainTime{Time: t}
		}
	case temporal.PlainDate:
		var d iso.Date
		if d, err = mergeDate(x.Calendar, base, p, dateNames, x.Kind(), zo.Overflow, x.Calendar.DateFromFields); err == nil {
			out = temporal.PlainDate{Date: d, Calendar: x.Calendar}
		}
	case temporal.PlainYearMonth:
		resolve := func(f calendar.DateFields, o options.Overflow) (iso.Date, error) {
			return calendar.YearMonthFromFields(x.Calendar, f, o)
		}
		var d iso.Date
		if d, err = mergeDate(x.Calendar, base, p, yearMonthNames, x.Kind(), zo.Overflow, resolve); err == nil {
			out = temporal.PlainYearMonth{Date: d, Calendar: x.Calendar}
		}
	case temporal.PlainMonthDay:
		md, ok := x.Calendar.(monthDayResolver)
		if !ok {
			return resp, fmt.Errorf("calcservice: %w: %s has no month-day support", apperr.ErrUnsupportedOperation, x.Calendar.ID())
		}
		var d iso.Date
		if d, err = mergeDate(x.Calendar, base, p, dateNames, x.Kind(), zo.Overflow, md.MonthDayFromFields); err == nil {
			out = temporal.PlainMonthDay{Date: d, Calendar: x.Calendar}
		}
	case temporal.PlainDateTime:
		var dt iso.DateTime
		if dt, err = mergeDateTime(x.Calendar, base, p, x.Kind(), zo.Overflow); err == nil {
			out = temporal.PlainDateTime{DateTime: dt, Calendar: x.Calendar}
		}
	case temporal.ZonedDateTime:
		out, err = withZoned(x, base, p, zo)
	default:
		return resp, fmt.Errorf("calcservice: %w: %s has no fields to replace", apperr.ErrUnsupportedOperation, v.Kind())
	}
	if err != nil {
		return resp, err
	}
	resp.Value, err = encode(out)
	return resp, err
}

func withZoned(z temporal.ZonedDateTime, base models.ValueRecord, p models.FieldPatch, zo options.ZonedFieldSettings) (temporal.Value, error) {
	var dt iso.DateTime
	var err error
	if p.HasDate() || p.HasClock() {
		dt, err = mergeDateTime(z.Calendar, base, p, z.Kind(), zo.Overflow)
	} else {
		dt, err = z.Local()
	}
	if err != nil {
		return nil, err
	}
	offText := base.Offset
	if p.Offset != "" {
		offText = p.Offset
	}
	off, err := timezone.ParseOffset(offText)
	if err != nil {
		return nil, err
	}
	e, err := timezone.MatchingInstantFor(z.TimeZone, dt, &off, false, zo.Offset, zo.Disambiguation, false)
	if err != nil {
		return nil, err
	}
	return temporal.ZonedDateTime{Epoch: e, TimeZone: z.TimeZone, Calendar: z.Calendar}, nil
}

func mergeDateTime(cal calendar.Calendar, base models.ValueRecord, p models.FieldPatch, kind temporal.Kind, overflow options.Overflow) (iso.DateTime, error) {
	fields := pickDateFields(dateFieldsOf(base), cal.Fields(dateNames))
	if p.HasDate() {
		fields = cal.MergeFields(fields, pickDateFields(patchDateFields(p), cal.Fields(dateNames)))
	} else if !p.HasClock() {
		return iso.DateTime{}, errNothingToChange(kind)
	}
	d, err := cal.DateFromFields(fields, overflow)
	if err != nil {
		return iso.DateTime{}, err
	}
	t, err := iso.RegulateTime(patchClock(base, p), overflow)
	if err != nil {
		return iso.DateTime{}, err
	}
	dt := iso.NewDateTime(d, t)
	return dt, iso.CheckDateTime(dt)
}

type dateResolver func(f calendar.DateFields, overflow options.Overflow) (iso.Date, error)

func mergeDate(cal calendar.Calendar, base models.ValueRecord, p models.FieldPatch, names []string, kind temporal.Kind, overflow options.Overflow, resolve dateResolver) (iso.Date, error) {
	names = cal.Fields(names)
	patch := pickDateFields(patchDateFields(p), names)
	if patch == (calendar.DateFields{}) {
		return iso.Date{}, errNothingToChange(kind)
	}
	return resolve(cal.MergeFields(pickDateFields(dateFieldsOf(base), names), patch), overflow)
}

// pickDateFields keeps only the fields listed in names.
func pickDateFields(f calendar.DateFields, names []string) calendar.DateFields {
	var out calendar.DateFields
	for _, n := range names {
		switch n {
		case calendar.FieldEra:
			out.Era = f.Era
		case calendar.FieldEraYear:
			out.EraYear = f.EraYear
		case calendar.FieldYear:
			out.Year = f.Year
		case calendar.FieldMonth:
			out.Month = f.Month
		case calendar.FieldMonthCode:
			out.MonthCode = f.MonthCode
		case calendar.FieldDay:
			out.Day = f.Day
		}
	}
	return out
}

func patchDateFields(p models.FieldPatch) calendar.DateFields {
	return calendar.DateFields{
		Era:       p.Era,
		EraYear:   p.EraYear,
		Year:      p.Year,
		Month:     p.Month,
		MonthCode: p.MonthCode,
		Day:       p.Day,
	}
}

func patchClock(base models.ValueRecord, p models.FieldPatch) iso.Time {
	t := clockOf(base)
	for _, f := range []struct {
		dst *int
		src *int
	}{
		{&t.Hour, p.Hour},
		{&t.Minute, p.Minute},
		{&t.Second, p.Second},
		{&t.Millisecond, p.Millisecond},
		{&t.Microsecond, p.Microsecond},
		{&t.Nanosecond, p.Nanosecond},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return t
}

func errNothingToChange(kind temporal.Kind) error {
	return fmt.Errorf("calcservice: %w: no %s field to replace", apperr.ErrInvalidOption, kind)
}
