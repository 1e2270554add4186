// Package models defines the wire records exchanged by the HTTP, MCP and CLI surfaces.
package models

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/options"
)

// Kind names accepted in ValueRecord.Kind.
const (
	KindPlainDate      = "PlainDate"
	KindPlainDateTime  = "PlainDateTime"
	KindZonedDateTime  = "ZonedDateTime"
	KindInstant        = "Instant"
	KindDuration       = "Duration"
	KindPlainYearMonth = "PlainYearMonth"
	KindPlainMonthDay  = "PlainMonthDay"
	KindPlainTime      = "PlainTime"
)

var kinds = []interface{}{
	KindPlainDate, KindPlainDateTime, KindZonedDateTime, KindInstant,
	KindDuration, KindPlainYearMonth, KindPlainMonthDay, KindPlainTime,
}

var (
	epochPattern  = regexp.MustCompile(`^-?[0-9]+$`)
	offsetPattern = regexp.MustCompile(`^[+-][0-9]{2}(:?[0-9]{2}(:?[0-9]{2})?)?$`)
)

// ValueRecord is a temporal value spelled out field by field. Which members
// matter depends on Kind: dates use the calendar fields, times the clock
// fields, zoned values add TimeZone (the service default when empty) and
// optionally Offset, instants use EpochNanoseconds and durations use Duration.
type ValueRecord struct {
	Kind     string `json:"kind" yaml:"kind"`
	Calendar string `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	TimeZone string `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	Offset   string `json:"offset,omitempty" yaml:"offset,omitempty"`

	Era       string `json:"era,omitempty" yaml:"era,omitempty"`
	EraYear   *int   `json:"eraYear,omitempty" yaml:"eraYear,omitempty"`
	Year      *int   `json:"year,omitempty" yaml:"year,omitempty"`
	Month     *int   `json:"month,omitempty" yaml:"month,omitempty"`
	MonthCode string `json:"monthCode,omitempty" yaml:"monthCode,omitempty"`
	Day       *int   `json:"day,omitempty" yaml:"day,omitempty"`

	Hour        int `json:"hour,omitempty" yaml:"hour,omitempty"`
	Minute      int `json:"minute,omitempty" yaml:"minute,omitempty"`
	Second      int `json:"second,omitempty" yaml:"second,omitempty"`
	Millisecond int `json:"millisecond,omitempty" yaml:"millisecond,omitempty"`
	Microsecond int `json:"microsecond,omitempty" yaml:"microsecond,omitempty"`
	Nanosecond  int `json:"nanosecond,omitempty" yaml:"nanosecond,omitempty"`

	EpochNanoseconds string `json:"epochNanoseconds,omitempty" yaml:"epochNanoseconds,omitempty"`

	Duration *duration.Fields `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Validate checks the record shape. Field ranges are left to the calendar.
func (r *ValueRecord) Validate() error {
	return invalid("value", validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&r.Offset, validation.Match(offsetPattern)),
		validation.Field(&r.EpochNanoseconds,
			validation.When(r.Kind == KindInstant, validation.Required),
			validation.Match(epochPattern)),
		validation.Field(&r.Duration, validation.When(r.Kind == KindDuration, validation.NotNil)),
		validation.Field(&r.Hour, validation.Min(0)),
		validation.Field(&r.Minute, validation.Min(0)),
		validation.Field(&r.Second, validation.Min(0)),
		validation.Field(&r.Millisecond, validation.Min(0)),
		validation.Field(&r.Microsecond, validation.Min(0)),
		validation.Field(&r.Nanosecond, validation.Min(0)),
	))
}

// ArithmeticRequest adds Duration to Value (or subtracts it).
type ArithmeticRequest struct {
	Value    ValueRecord     `json:"value" yaml:"value"`
	Duration duration.Fields `json:"duration" yaml:"duration"`
	Overflow string          `json:"overflow,omitempty" yaml:"overflow,omitempty"`
}

// Validate checks the value and the overflow name.
func (r *ArithmeticRequest) Validate() error {
	return firstError(
		r.Value.Validate(),
		invalid("request", validation.ValidateStruct(r,
			validation.Field(&r.Overflow, validation.In(names(options.OverflowNames())...)),
		)),
	)
}

// DifferenceRequest measures from One to Other.
type DifferenceRequest struct {
	One     ValueRecord         `json:"one" yaml:"one"`
	Other   ValueRecord         `json:"other" yaml:"other"`
	Options options.DiffOptions `json:"options" yaml:"options"`
}

// Validate checks both values and the options.
func (r *DifferenceRequest) Validate() error {
	return firstError(
		invalid("one", r.One.Validate()),
		invalid("other", r.Other.Validate()),
		r.Options.Validate(),
	)
}

// RoundRequest rounds a single point in time.
type RoundRequest struct {
	Value   ValueRecord          `json:"value" yaml:"value"`
	Options options.RoundOptions `json:"options" yaml:"options"`
}

// Validate checks the value and the options.
func (r *RoundRequest) Validate() error {
	return firstError(r.Value.Validate(), r.Options.Validate())
}

// DurationRoundRequest rounds and balances a duration, optionally against
// a reference point.
type DurationRoundRequest struct {
	Duration   duration.Fields              `json:"duration" yaml:"duration"`
	RelativeTo *ValueRecord                 `json:"relativeTo,omitempty" yaml:"relativeTo,omitempty"`
	Options    options.DurationRoundOptions `json:"options" yaml:"options"`
}

// Validate checks the reference point and the options.
func (r *DurationRoundRequest) Validate() error {
	return firstError(validateRelativeTo(r.RelativeTo), r.Options.Validate())
}

// DurationTotalRequest expresses a duration as a number of one unit.
type DurationTotalRequest struct {
	Duration   duration.Fields      `json:"duration" yaml:"duration"`
	RelativeTo *ValueRecord         `json:"relativeTo,omitempty" yaml:"relativeTo,omitempty"`
	Options    options.TotalOptions `json:"options" yaml:"options"`
}

// Validate checks the reference point and the unit.
func (r *DurationTotalRequest) Validate() error {
	return firstError(validateRelativeTo(r.RelativeTo), r.Options.Validate())
}

// DurationPairRequest carries two durations for add and compare.
type DurationPairRequest struct {
	One        duration.Fields `json:"one" yaml:"one"`
	Other      duration.Fields `json:"other" yaml:"other"`
	Subtract   bool            `json:"subtract,omitempty" yaml:"subtract,omitempty"`
	RelativeTo *ValueRecord    `json:"relativeTo,omitempty" yaml:"relativeTo,omitempty"`
}

// Validate checks the reference point.
func (r *DurationPairRequest) Validate() error {
	return validateRelativeTo(r.RelativeTo)
}

// ResolveRequest turns local fields in a zone into an exact instant.
type ResolveRequest struct {
	Value   ValueRecord               `json:"value" yaml:"value"`
	Options options.ZonedFieldOptions `json:"options" yaml:"options"`
}

// Validate requires a zoned record.
func (r *ResolveRequest) Validate() error {
	if err := r.Value.Validate(); err != nil {
		return err
	}
	if r.Value.Kind != KindZonedDateTime {
		return fmt.Errorf("%w: resolve needs a %s, got %s", apperr.ErrInvalidOption, KindZonedDateTime, r.Value.Kind)
	}
	return r.Options.Validate()
}

// FieldPatch names the fields a with request replaces. Nil and empty
// members keep the value's own field.
type FieldPatch struct {
	Era       string `json:"era,omitempty" yaml:"era,omitempty"`
	EraYear   *int   `json:"eraYear,omitempty" yaml:"eraYear,omitempty"`
	Year      *int   `json:"year,omitempty" yaml:"year,omitempty"`
	Month     *int   `json:"month,omitempty" yaml:"month,omitempty"`
	MonthCode string `json:"monthCode,omitempty" yaml:"monthCode,omitempty"`
	Day       *int   `json:"day,omitempty" yaml:"day,omitempty"`

	Hour        *int `json:"hour,omitempty" yaml:"hour,omitempty"`
	Minute      *int `json:"minute,omitempty" yaml:"minute,omitempty"`
	Second      *int `json:"second,omitempty" yaml:"second,omitempty"`
	Millisecond *int `json:"millisecond,omitempty" yaml:"millisecond,omitempty"`
	Microsecond *int `json:"microsecond,omitempty" yaml:"microsecond,omitempty"`
	Nanosecond  *int `json:"nanosecond,omitempty" yaml:"nanosecond,omitempty"`

	Offset string `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// HasClock reports whether any time-of-day field is set.
func (p FieldPatch) HasClock() bool {
	for _, v := range []*int{p.Hour, p.Minute, p.Second, p.Millisecond, p.Microsecond, p.Nanosecond} {
		if v != nil {
			return true
		}
	}
	return false
}

// HasDate reports whether any calendar field is set.
func (p FieldPatch) HasDate() bool {
	return p.Era != "" || p.EraYear != nil || p.Year != nil || p.Month != nil || p.MonthCode != "" || p.Day != nil
}

// WithRequest replaces some fields of Value and resolves the result again.
// Zoned values keep their offset where it is still valid.
type WithRequest struct {
	Value   ValueRecord               `json:"value" yaml:"value"`
	Fields  FieldPatch                `json:"fields" yaml:"fields"`
	Options options.ZonedFieldOptions `json:"options" yaml:"options"`
}

var withKinds = []interface{}{
	KindPlainDate, KindPlainDateTime, KindZonedDateTime,
	KindPlainYearMonth, KindPlainMonthDay, KindPlainTime,
}

// Validate checks the value kind, the patch shape and the options.
func (r *WithRequest) Validate() error {
	if err := r.Value.Validate(); err != nil {
		return err
	}
	p := &r.Fields
	err := firstError(
		invalid("value", validation.Validate(r.Value.Kind, validation.In(withKinds...))),
		invalid("fields", validation.ValidateStruct(p,
			validation.Field(&p.Offset, validation.Match(offsetPattern)),
			validation.Field(&p.Hour, validation.Min(0)),
			validation.Field(&p.Minute, validation.Min(0)),
			validation.Field(&p.Second, validation.Min(0)),
			validation.Field(&p.Millisecond, validation.Min(0)),
			validation.Field(&p.Microsecond, validation.Min(0)),
			validation.Field(&p.Nanosecond, validation.Min(0)),
		)),
		r.Options.Validate(),
	)
	if err != nil {
		return err
	}
	if p.Offset != "" && r.Value.Kind != KindZonedDateTime {
		return fmt.Errorf("%w: fields: offset only applies to %s", apperr.ErrInvalidOption, KindZonedDateTime)
	}
	if !p.HasDate() && !p.HasClock() && p.Offset == "" {
		return fmt.Errorf("%w: fields: nothing to change", apperr.ErrInvalidOption)
	}
	return nil
}

// ValueResponse wraps a computed value.
type ValueResponse struct {
	Value ValueRecord `json:"value" yaml:"value"`
}

// DurationResponse wraps a computed duration.
type DurationResponse struct {
	Duration duration.Fields `json:"duration" yaml:"duration"`
}

// TotalResponse carries a duration total.
type TotalResponse struct {
	Unit  string  `json:"unit" yaml:"unit"`
	Total float64 `json:"total" yaml:"total"`
}

// CompareResponse is -1, 0 or 1.
type CompareResponse struct {
	Result int `json:"result" yaml:"result"`
}

// DayResponse describes one local day in a zone.
type DayResponse struct {
	TimeZone   string      `json:"timeZone" yaml:"timeZone"`
	Start      ValueRecord `json:"start" yaml:"start"`
	HoursInDay float64     `json:"hoursInDay" yaml:"hoursInDay"`
}

// ZoneInfo lists a catalog zone.
type ZoneInfo struct {
	ID          string `json:"id" yaml:"id"`
	File        string `json:"file" yaml:"file"`
	Checksum    string `json:"checksum" yaml:"checksum"`
	Transitions int    `json:"transitions" yaml:"transitions"`
}

func validateRelativeTo(r *ValueRecord) error {
	if r == nil {
		return nil
	}
	return invalid("relativeTo", r.Validate())
}

// invalid tags ozzo errors so callers can match them with errors.Is.
func invalid(name string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apperr.ErrInvalidOption) {
		return fmt.Errorf("%s: %w", name, err)
	}
	return fmt.Errorf("%w: %s: %v", apperr.ErrInvalidOption, name, err)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func names(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
