package timezone

import (
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/iso"
)

// UTCID is the id of the zero-offset zone.
const UTCID = "UTC"

// UTC is the zero-offset zone.
var UTC = Fixed{offset: 0}

// Fixed is a zone with a constant offset.
type Fixed struct {
	offset int64
}

// NewFixed returns a zone at a constant offset. |offset| must be below a day.
func NewFixed(offsetNanos int64) Fixed { return Fixed{offset: offsetNanos} }

func (f Fixed) ID() string {
	if f.offset == 0 {
		return UTCID
	}
	return FormatOffset(f.offset)
}

func (f Fixed) OffsetNanosecondsFor(daytime.Nano) (int64, error) { return f.offset, nil }

func (f Fixed) PossibleInstantsFor(dt iso.DateTime) ([]daytime.Nano, error) {
	if err := iso.CheckDateTime(dt); err != nil {
		return nil, err
	}
	return []daytime.Nano{dt.EpochNanoUnchecked().AddNanos(-f.offset)}, nil
}
