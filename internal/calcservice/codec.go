package calcservice

import (
	"fmt"
	"math/big"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/models"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/temporal"
	"github.com/starford/tempus/internal/timezone"
)

type monthDayResolver interface {
	MonthDayFromFields(f calendar.DateFields, overflow options.Overflow) (iso.Date, error)
}

// decode turns a wire record into a value. Zoned records without an epoch
// are resolved from their local fields with zo.
func (s *Service) decode(r models.ValueRecord, zo options.ZonedFieldSettings) (temporal.Value, error) {
	kind, err := temporal.ParseKind(r.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case temporal.KindInstant:
		e, err := parseEpoch(r.EpochNanoseconds)
		return temporal.Instant{Epoch: e}, err
	case temporal.KindDuration:
		if r.Duration == nil {
			return nil, fmt.Errorf("calcservice: %w: duration fields are required", apperr.ErrInvalidFieldCombination)
		}
		return temporal.Duration{Fields: *r.Duration}, r.Duration.Validate()
	case temporal.KindPlainTime:
		t, err := iso.RegulateTime(clockOf(r), zo.Overflow)
		return temporal.PlainTime{Time: t}, err
	}

	cal, err := s.calendar(r.Calendar)
	if err != nil {
		return nil, err
	}
	fields := dateFieldsOf(r)
	switch kind {
	case temporal.KindPlainDate:
		d, err := cal.DateFromFields(fields, zo.Overflow)
		return temporal.PlainDate{Date: d, Calendar: cal}, err
	case temporal.KindPlainYearMonth:
		d, err := calendar.YearMonthFromFields(cal, fields, zo.Overflow)
		return temporal.PlainYearMonth{Date: d, Calendar: cal}, err
	case temporal.KindPlainMonthDay:
		md, ok := cal.(monthDayResolver)
		if !ok {
			return nil, fmt.Errorf("calcservice: %w: %s has no month-day support", apperr.ErrUnsupportedOperation, cal.ID())
		}
		d, err := md.MonthDayFromFields(fields, zo.Overflow)
		return temporal.PlainMonthDay{Date: d, Calendar: cal}, err
	case temporal.KindPlainDateTime:
		dt, err := s.localDateTime(cal, r, zo.Overflow)
		return temporal.PlainDateTime{DateTime: dt, Calendar: cal}, err
	}

	tz, err := s.zone(r.TimeZone)
	if err != nil {
		return nil, err
	}
	if r.EpochNanoseconds != "" {
		e, err := parseEpoch(r.EpochNanoseconds)
		return temporal.ZonedDateTime{Epoch: e, TimeZone: tz, Calendar: cal}, err
	}
	dt, err := s.localDateTime(cal, r, zo.Overflow)
	if err != nil {
		return nil, err
	}
	var offset *int64
	if r.Offset != "" {
		off, err := timezone.ParseOffset(r.Offset)
		if err != nil {
			return nil, err
		}
		offset = &off
	}
	e, err := timezone.MatchingInstantFor(tz, dt, offset, false, zo.Offset, zo.Disambiguation, false)
	if err != nil {
		return nil, err
	}
	return temporal.ZonedDateTime{Epoch: e, TimeZone: tz, Calendar: cal}, nil
}

func (s *Service) localDateTime(cal calendar.Calendar, r models.ValueRecord, overflow options.Overflow) (iso.DateTime, error) {
	d, err := cal.DateFromFields(dateFieldsOf(r), overflow)
	if err != nil {
		return iso.DateTime{}, err
	}
	t, err := iso.RegulateTime(clockOf(r), overflow)
	if err != nil {
		return iso.DateTime{}, err
	}
	dt := iso.NewDateTime(d, t)
	return dt, iso.CheckDateTime(dt)
}

func dateFieldsOf(r models.ValueRecord) calendar.DateFields {
	return calendar.DateFields{
		Era:       r.Era,
		EraYear:   r.EraYear,
		Year:      r.Year,
		Month:     r.Month,
		MonthCode: r.MonthCode,
		Day:       r.Day,
	}
}

func clockOf(r models.ValueRecord) iso.Time {
	return iso.Time{
		Hour:        r.Hour,
		Minute:      r.Minute,
		Second:      r.Second,
		Millisecond: r.Millisecond,
		Microsecond: r.Microsecond,
		Nanosecond:  r.Nanosecond,
	}
}

func parseEpoch(s string) (daytime.Nano, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return daytime.Zero, fmt.Errorf("calcservice: %w: epochNanoseconds %q", apperr.ErrInvalidOption, s)
	}
	e, err := daytime.FromBig(n)
	if err != nil {
		return daytime.Zero, err
	}
	return e, e.Validate()
}

// encode is the inverse of decode.
func encode(v temporal.Value) (models.ValueRecord, error) {
	r := models.ValueRecord{Kind: v.Kind().String()}
	switch x := v.(type) {
	case temporal.PlainDate:
		setDate(&r, x.Calendar, x.Date)
	case temporal.PlainDateTime:
		setDate(&r, x.Calendar, x.DateTime.Date)
		setClock(&r, x.DateTime.Time)
	case temporal.ZonedDateTime:
		local, err := x.Local()
		if err != nil {
			return r, err
		}
		off, err := x.TimeZone.OffsetNanosecondsFor(x.Epoch)
		if err != nil {
			return r, err
		}
		setDate(&r, x.Calendar, local.Date)
		setClock(&r, local.Time)
		r.TimeZone = x.TimeZone.ID()
		r.Offset = timezone.FormatOffset(off)
		r.EpochNanoseconds = x.Epoch.Big().String()
	case temporal.Instant:
		r.EpochNanoseconds = x.Epoch.Big().String()
	case temporal.Duration:
		f := x.Fields
		r.Duration = &f
	case temporal.PlainYearMonth:
		setDate(&r, x.Calendar, x.Date)
		r.Day = nil
	case temporal.PlainMonthDay:
		setDate(&r, x.Calendar, x.Date)
		r.Year, r.Era, r.EraYear = nil, "", nil
	case temporal.PlainTime:
		setClock(&r, x.Time)
	default:
		return r, fmt.Errorf("calcservice: %w: cannot encode %s", apperr.ErrUnsupportedOperation, v.Kind())
	}
	return r, nil
}

func setDate(r *models.ValueRecord, cal calendar.Calendar, d iso.Date) {
	if cal == nil {
		cal = calendar.NewISO()
	}
	r.Calendar = cal.ID()
	r.MonthCode = cal.MonthCode(d)
	info, ok := cal.(calendar.Info)
	if !ok {
		r.Year, r.Month, r.Day = calendar.Int(d.Year), calendar.Int(d.Month), calendar.Int(d.Day)
		return
	}
	r.Year = calendar.Int(info.Year(d))
	r.Month = calendar.Int(info.Month(d))
	r.Day = calendar.Int(info.Day(d))
	if era, eraYear, ok := info.Era(d); ok {
		r.Era, r.EraYear = era, calendar.Int(eraYear)
	}
}

func setClock(r *models.ValueRecord, t iso.Time) {
	r.Hour, r.Minute, r.Second = t.Hour, t.Minute, t.Second
	r.Millisecond, r.Microsecond, r.Nanosecond = t.Millisecond, t.Microsecond, t.Nanosecond
}

func durationOf(f duration.Fields) (duration.Fields, error) {
	return f, f.Validate()
}
