// Package temporal is the closed set of value kinds the service works with.
// Every operation dispatches on the concrete kind with a type switch.
package temporal

import (
	"fmt"
	"strings"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/duration"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/timezone"
)

// Kind names a value type.
type Kind int

const (
	KindPlainDate Kind = iota
	KindPlainDateTime
	KindZonedDateTime
	KindInstant
	KindDuration
	KindPlainYearMonth
	KindPlainMonthDay
	KindPlainTime
)

var kindNames = [...]string{
	"PlainDate", "PlainDateTime", "ZonedDateTime", "Instant",
	"Duration", "PlainYearMonth", "PlainMonthDay", "PlainTime",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// KindNames lists every kind name.
func KindNames() []string { return append([]string(nil), kindNames[:]...) }

// ParseKind accepts a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, s) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("temporal: %w: unknown kind %q", apperr.ErrInvalidOption, s)
}

// Value is implemented only by the types in this package.
type Value interface {
	Kind() Kind
	value()
}

// PlainDate is a calendar date without a time or zone.
type PlainDate struct {
	Date     iso.Date
	Calendar calendar.Calendar
}

// PlainDateTime is a wall-clock reading without a zone.
type PlainDateTime struct {
	DateTime iso.DateTime
	Calendar calendar.Calendar
}

// ZonedDateTime is an exact instant viewed through a zone and calendar.
type ZonedDateTime struct {
	Epoch    daytime.Nano
	TimeZone timezone.TimeZone
	Calendar calendar.Calendar
}

// Instant is an exact point on the timeline.
type Instant struct {
	Epoch daytime.Nano
}

// Duration is a signed span.
type Duration struct {
	Fields duration.Fields
}

// PlainYearMonth is a month in a calendar, stored as its first day.
type PlainYearMonth struct {
	Date     iso.Date
	Calendar calendar.Calendar
}

// PlainMonthDay is a recurring day of the year, stored in a reference year.
type PlainMonthDay struct {
	Date     iso.Date
	Calendar calendar.Calendar
}

// PlainTime is a time of day.
type PlainTime struct {
	Time iso.Time
}

func (PlainDate) Kind() Kind      { return KindPlainDate }
func (PlainDateTime) Kind() Kind  { return KindPlainDateTime }
func (ZonedDateTime) Kind() Kind  { return KindZonedDateTime }
func (Instant) Kind() Kind        { return KindInstant }
func (Duration) Kind() Kind       { return KindDuration }
func (PlainYearMonth) Kind() Kind { return KindPlainYearMonth }
func (PlainMonthDay) Kind() Kind  { return KindPlainMonthDay }
func (PlainTime) Kind() Kind      { return KindPlainTime }

func (PlainDate) value()      {}
func (PlainDateTime) value()  {}
func (ZonedDateTime) value()  {}
func (Instant) value()        {}
func (Duration) value()       {}
func (PlainYearMonth) value() {}
func (PlainMonthDay) value()  {}
func (PlainTime) value()      {}

// Local returns the wall-clock reading of z.
func (z ZonedDateTime) Local() (iso.DateTime, error) {
	return timezone.EpochToIso(z.TimeZone, z.Epoch)
}

// StartOfDay returns the first instant of z's local day.
func (z ZonedDateTime) StartOfDay() (ZonedDateTime, error) {
	local, err := z.Local()
	if err != nil {
		return ZonedDateTime{}, err
	}
	e, err := timezone.StartOfDay(z.TimeZone, local.Date)
	if err != nil {
		return ZonedDateTime{}, err
	}
	return ZonedDateTime{Epoch: e, TimeZone: z.TimeZone, Calendar: z.Calendar}, nil
}

// HoursInDay returns the length of z's local day.
func (z ZonedDateTime) HoursInDay() (float64, error) {
	local, err := z.Local()
	if err != nil {
		return 0, err
	}
	return timezone.HoursInDay(z.TimeZone, local.Date)
}

func calOf(c calendar.Calendar) calendar.Calendar {
	if c == nil {
		return calendar.NewISO()
	}
	return c
}
