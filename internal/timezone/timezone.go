// Package timezone maps exact instants to UTC offsets and resolves local
// date-times back into instants.
package timezone

//go:generate mockgen -destination=mocks/timezone_mock.go -package=mocks github.com/starford/tempus/internal/timezone TimeZone

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/units"
)

// TimeZone is the contract every zone implementation honours. Offsets are in
// nanoseconds and strictly within one day. PossibleInstantsFor returns zero
// instants in a gap, two in an overlap and one otherwise, in ascending order.
type TimeZone interface {
	ID() string
	OffsetNanosecondsFor(epoch daytime.Nano) (int64, error)
	PossibleInstantsFor(dt iso.DateTime) ([]daytime.Nano, error)
}

// Offsets is the part of TimeZone needed to derive possible instants.
type Offsets interface {
	OffsetNanosecondsFor(epoch daytime.Nano) (int64, error)
}

// offsetFor queries z and checks the result is a legal offset.
func offsetFor(z Offsets, epoch daytime.Nano) (int64, error) {
	off, err := z.OffsetNanosecondsFor(epoch)
	if err != nil {
		return 0, err
	}
	if mathx.Abs(off) >= units.NanoInDay {
		return 0, fmt.Errorf("timezone: %w: offset %d out of range", apperr.ErrFaultyCalendarResult, off)
	}
	return off, nil
}

// PossibleInstants derives candidates for dt by probing the offsets in effect
// one day either side of it. Zones with at most one transition per two days
// are handled exactly.
func PossibleInstants(z Offsets, dt iso.DateTime) ([]daytime.Nano, error) {
	if err := iso.CheckDateTime(dt); err != nil {
		return nil, err
	}
	local := dt.EpochNanoUnchecked()
	before, err := offsetFor(z, local.AddNanos(-units.NanoInDay))
	if err != nil {
		return nil, err
	}
	after, err := offsetFor(z, local.AddNanos(units.NanoInDay))
	if err != nil {
		return nil, err
	}
	var out []daytime.Nano
	for _, off := range []int64{before, after} {
		e := local.AddNanos(-off)
		actual, err := offsetFor(z, e)
		if err != nil {
			return nil, err
		}
		if actual != off {
			continue
		}
		if len(out) == 1 && daytime.Compare(out[0], e) == 0 {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return daytime.Compare(out[i], out[j]) < 0 })
	return out, nil
}

// Common returns a when both zones share an id.
func Common(a, b TimeZone) (TimeZone, error) {
	if a.ID() != b.ID() {
		return nil, fmt.Errorf("timezone: %w: %s vs %s", apperr.ErrMismatchedTimeZones, a.ID(), b.ID())
	}
	return a, nil
}

// FormatOffset renders "+05:30", adding seconds and a fraction when needed.
func FormatOffset(nanos int64) string {
	sign := "+"
	if nanos < 0 {
		sign = "-"
		nanos = -nanos
	}
	h := nanos / units.NanoInHour
	m := nanos % units.NanoInHour / units.NanoInMinute
	s := nanos % units.NanoInMinute / units.NanoInSecond
	frac := nanos % units.NanoInSecond
	out := fmt.Sprintf("%s%02d:%02d", sign, h, m)
	if s != 0 || frac != 0 {
		out += fmt.Sprintf(":%02d", s)
	}
	if frac != 0 {
		out += strings.TrimRight(fmt.Sprintf(".%09d", frac), "0")
	}
	return out
}

// ParseOffset accepts "±HH", "±HHMM", "±HH:MM" and "±HH:MM:SS".
func ParseOffset(s string) (int64, error) {
	bad := fmt.Errorf("timezone: %w: bad offset %q", apperr.ErrInvalidOption, s)
	if len(s) < 3 || (s[0] != '+' && s[0] != '-') {
		return 0, bad
	}
	body := strings.ReplaceAll(s[1:], ":", "")
	if len(body) != 2 && len(body) != 4 && len(body) != 6 {
		return 0, bad
	}
	var total int64
	scale := []int64{units.NanoInHour, units.NanoInMinute, units.NanoInSecond}
	limit := []int64{23, 59, 59}
	for i := 0; i*2 < len(body); i++ {
		v, err := strconv.ParseInt(body[i*2:i*2+2], 10, 64)
		if err != nil || v > limit[i] {
			return 0, bad
		}
		total += v * scale[i]
	}
	if s[0] == '-' {
		total = -total
	}
	return total, nil
}

// RoundToMinute rounds an offset half away from zero to whole minutes.
func RoundToMinute(nanos int64) int64 {
	half := units.NanoInMinute / 2
	if nanos < 0 {
		return -((-nanos + half) / units.NanoInMinute * units.NanoInMinute)
	}
	return (nanos + half) / units.NanoInMinute * units.NanoInMinute
}
