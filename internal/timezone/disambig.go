package timezone

import (
	"fmt"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/options"
	"github.com/starford/tempus/internal/units"
)

// MatchingInstantFor resolves local fields in tz to one instant.
//
// offset is the caller's explicit UTC offset, if any; hasZ marks a "Z"
// designator, which always uses the offset as given. fuzzy tolerates a
// local time that does not exist: gaps resolve as Compatible regardless of
// epochDisambig, and an explicit offset also matches a candidate whose
// offset agrees to the minute.
func MatchingInstantFor(
	tz TimeZone,
	dt iso.DateTime,
	offset *int64,
	hasZ bool,
	offsetDisambig options.OffsetDisambig,
	epochDisambig options.EpochDisambig,
	fuzzy bool,
) (daytime.Nano, error) {
	if offset != nil && (hasZ || offsetDisambig == options.OffsetUse) {
		e, err := dt.EpochNano()
		if err != nil {
			return daytime.Zero, err
		}
		return checked(e.AddNanos(-*offset))
	}
	if offset != nil && offsetDisambig != options.OffsetIgnore {
		candidates, err := tz.PossibleInstantsFor(dt)
		if err != nil {
			return daytime.Zero, err
		}
		for _, c := range candidates {
			actual, err := offsetFor(tz, c)
			if err != nil {
				return daytime.Zero, err
			}
			if actual == *offset || (fuzzy && RoundToMinute(actual) == *offset) {
				return checked(c)
			}
		}
		if offsetDisambig == options.OffsetReject {
			return daytime.Zero, fmt.Errorf("timezone: %w: offset %s is not valid for %s in %s",
				apperr.ErrAmbiguousTime, FormatOffset(*offset), dt, tz.ID())
		}
		epochDisambig = options.Compatible
	}
	return singleInstantFor(tz, dt, epochDisambig, fuzzy)
}

// SingleInstantFor resolves local fields without an explicit offset.
func SingleInstantFor(tz TimeZone, dt iso.DateTime, disambig options.EpochDisambig) (daytime.Nano, error) {
	return singleInstantFor(tz, dt, disambig, false)
}

func singleInstantFor(tz TimeZone, dt iso.DateTime, disambig options.EpochDisambig, fuzzy bool) (daytime.Nano, error) {
	candidates, err := tz.PossibleInstantsFor(dt)
	if err != nil {
		return daytime.Zero, err
	}
	switch len(candidates) {
	case 1:
		return checked(candidates[0])
	case 2:
		switch disambig {
		case options.EpochReject:
			return daytime.Zero, fmt.Errorf("timezone: %w: %s occurs twice in %s", apperr.ErrAmbiguousTime, dt, tz.ID())
		case options.Later:
			return checked(candidates[1])
		}
		return checked(candidates[0])
	case 0:
	default:
		return daytime.Zero, fmt.Errorf("timezone: %w: %s returned %d instants for %s",
			apperr.ErrFaultyCalendarResult, tz.ID(), len(candidates), dt)
	}

	if fuzzy {
		disambig = options.Compatible
	}
	if disambig == options.EpochReject {
		return daytime.Zero, fmt.Errorf("timezone: %w: %s does not exist in %s", apperr.ErrAmbiguousTime, dt, tz.ID())
	}
	gap, err := gapNanos(tz, dt)
	if err != nil {
		return daytime.Zero, err
	}
	shift, pickLast := -gap, false
	if disambig == options.Later {
		shift, pickLast = gap, true
	}
	shifted := dt.AddNanos(daytime.FromNanos(shift))
	candidates, err = tz.PossibleInstantsFor(shifted)
	if err != nil {
		return daytime.Zero, err
	}
	if len(candidates) == 0 {
		return daytime.Zero, fmt.Errorf("timezone: %w: %s still has no instant for %s",
			apperr.ErrFaultyCalendarResult, tz.ID(), shifted)
	}
	if pickLast {
		return checked(candidates[len(candidates)-1])
	}
	return checked(candidates[0])
}

// gapNanos measures a gap as the offset a day after dt minus the offset a
// day before it.
func gapNanos(tz TimeZone, dt iso.DateTime) (int64, error) {
	local := dt.EpochNanoUnchecked()
	before, err := offsetFor(tz, local.AddNanos(-units.NanoInDay))
	if err != nil {
		return 0, err
	}
	after, err := offsetFor(tz, local.AddNanos(units.NanoInDay))
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

func checked(e daytime.Nano) (daytime.Nano, error) {
	if err := e.Validate(); err != nil {
		return daytime.Zero, err
	}
	return e, nil
}

// EpochToIso returns the local fields of an instant in tz.
func EpochToIso(tz TimeZone, e daytime.Nano) (iso.DateTime, error) {
	off, err := offsetFor(tz, e)
	if err != nil {
		return iso.DateTime{}, err
	}
	return iso.FromEpochNanoOffset(e, off), nil
}

// StartOfDay returns the first instant whose local date is date. A midnight
// that falls in a gap resolves forward to the end of the gap.
func StartOfDay(tz TimeZone, date iso.Date) (daytime.Nano, error) {
	return singleInstantFor(tz, iso.NewDateTime(date, iso.Time{}), options.Later, false)
}

// HoursInDay returns the length of the local day in hours.
func HoursInDay(tz TimeZone, date iso.Date) (float64, error) {
	start, err := StartOfDay(tz, date)
	if err != nil {
		return 0, err
	}
	end, err := StartOfDay(tz, date.AddDays(1))
	if err != nil {
		return 0, err
	}
	return daytime.ToNumber(daytime.Diff(start, end), units.NanoInHour, true)
}

// DayLength returns the exact span from the start of the local day holding
// e to the start of the next.
func DayLength(tz TimeZone, e daytime.Nano) (start, end daytime.Nano, err error) {
	local, err := EpochToIso(tz, e)
	if err != nil {
		return daytime.Zero, daytime.Zero, err
	}
	if start, err = StartOfDay(tz, local.Date); err != nil {
		return daytime.Zero, daytime.Zero, err
	}
	if end, err = StartOfDay(tz, local.Date.AddDays(1)); err != nil {
		return daytime.Zero, daytime.Zero, err
	}
	return start, end, nil
}
