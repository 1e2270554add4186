package options

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/units"
)

// AutoUnit asks for the default largest unit.
const AutoUnit = "auto"

// maxLargeIncrement caps the rounding increment for day and larger units.
const maxLargeIncrement = 1_000_000_000

// DiffOptions is the caller-facing option bag for until and since.
type DiffOptions struct {
	LargestUnit       string `json:"largestUnit,omitempty" yaml:"largestUnit,omitempty"`
	SmallestUnit      string `json:"smallestUnit,omitempty" yaml:"smallestUnit,omitempty"`
	RoundingMode      string `json:"roundingMode,omitempty" yaml:"roundingMode,omitempty"`
	RoundingIncrement int64  `json:"roundingIncrement,omitempty" yaml:"roundingIncrement,omitempty"`
}

// Validate checks option names without applying defaults.
func (o *DiffOptions) Validate() error {
	return invalid(validation.ValidateStruct(o,
		validation.Field(&o.LargestUnit, validation.By(unitName(true))),
		validation.Field(&o.SmallestUnit, validation.By(unitName(false))),
		validation.Field(&o.RoundingMode, validation.In(anyOf(roundingModeNames[:])...)),
		validation.Field(&o.RoundingIncrement, validation.Min(int64(0))),
	))
}

// DurationRoundOptions rounds a duration. At least one unit must be given.
type DurationRoundOptions struct {
	DiffOptions `yaml:",inline"`
}

// Validate checks option names and that some unit is present.
func (o *DurationRoundOptions) Validate() error {
	if err := o.DiffOptions.Validate(); err != nil {
		return err
	}
	if o.SmallestUnit == "" && (o.LargestUnit == "" || o.LargestUnit == AutoUnit) {
		return fmt.Errorf("%w: smallestUnit or largestUnit is required", apperr.ErrInvalidOption)
	}
	return nil
}

// RoundOptions rounds a single point in time.
type RoundOptions struct {
	SmallestUnit      string `json:"smallestUnit" yaml:"smallestUnit"`
	RoundingMode      string `json:"roundingMode,omitempty" yaml:"roundingMode,omitempty"`
	RoundingIncrement int64  `json:"roundingIncrement,omitempty" yaml:"roundingIncrement,omitempty"`
}

// Validate checks option names without applying defaults.
func (o *RoundOptions) Validate() error {
	return invalid(validation.ValidateStruct(o,
		validation.Field(&o.SmallestUnit, validation.Required, validation.By(unitName(false))),
		validation.Field(&o.RoundingMode, validation.In(anyOf(roundingModeNames[:])...)),
		validation.Field(&o.RoundingIncrement, validation.Min(int64(0))),
	))
}

// TotalOptions names the unit a duration is totalled in.
type TotalOptions struct {
	Unit string `json:"unit" yaml:"unit"`
}

// Validate checks the unit name.
func (o *TotalOptions) Validate() error {
	return invalid(validation.ValidateStruct(o,
		validation.Field(&o.Unit, validation.Required, validation.By(unitName(false))),
	))
}

// ZonedFieldOptions controls how local fields become a zoned instant.
type ZonedFieldOptions struct {
	Overflow       string `json:"overflow,omitempty" yaml:"overflow,omitempty"`
	Offset         string `json:"offset,omitempty" yaml:"offset,omitempty"`
	Disambiguation string `json:"disambiguation,omitempty" yaml:"disambiguation,omitempty"`
}

// Validate checks option names without applying defaults.
func (o *ZonedFieldOptions) Validate() error {
	return invalid(validation.ValidateStruct(o,
		validation.Field(&o.Overflow, validation.In(anyOf(overflowNames)...)),
		validation.Field(&o.Offset, validation.In(anyOf(offsetDisambigNames)...)),
		validation.Field(&o.Disambiguation, validation.In(anyOf(epochDisambigNames)...)),
	))
}

// DiffSettings is a refined diff or duration-round request.
type DiffSettings struct {
	LargestUnit       units.Unit
	SmallestUnit      units.Unit
	RoundingIncrement int64
	RoundingMode      RoundingMode
}

// RoundSettings is a refined point rounding request.
type RoundSettings struct {
	SmallestUnit      units.Unit
	RoundingIncrement int64
	RoundingMode      RoundingMode
}

// ZonedFieldSettings is a refined ZonedFieldOptions.
type ZonedFieldSettings struct {
	Overflow       Overflow
	Offset         OffsetDisambig
	Disambiguation EpochDisambig
}

// RefineDiffOptions applies diff defaults. Units outside [minUnit, maxUnit]
// are rejected, the largest unit defaults to max(defaultLargest, smallest),
// and invert flips the rounding direction for since.
func RefineDiffOptions(o DiffOptions, invert bool, defaultLargest, maxUnit, minUnit units.Unit) (DiffSettings, error) {
	if err := o.Validate(); err != nil {
		return DiffSettings{}, err
	}
	largest, hasLargest, err := unitInRange("largestUnit", o.LargestUnit, minUnit, maxUnit)
	if err != nil {
		return DiffSettings{}, err
	}
	mode, err := roundingModeOr(o.RoundingMode, Trunc)
	if err != nil {
		return DiffSettings{}, err
	}
	smallest, hasSmallest, err := unitInRange("smallestUnit", o.SmallestUnit, minUnit, maxUnit)
	if err != nil {
		return DiffSettings{}, err
	}
	if !hasSmallest {
		smallest = minUnit
	}
	if !hasLargest {
		largest = units.Max(defaultLargest, smallest)
	} else if smallest > largest {
		return DiffSettings{}, fmt.Errorf("%w: smallestUnit %s is larger than largestUnit %s",
			apperr.ErrInvalidOption, smallest, largest)
	}
	inc, err := RefineRoundingIncrement(o.RoundingIncrement, smallest, true, false)
	if err != nil {
		return DiffSettings{}, err
	}
	if invert {
		mode = mode.Invert()
	}
	return DiffSettings{LargestUnit: largest, SmallestUnit: smallest, RoundingIncrement: inc, RoundingMode: mode}, nil
}

// RefineRoundOptions applies point rounding defaults (HalfExpand). In solar
// mode the increment is measured against a whole day rather than the next
// unit, which lets instants round to e.g. 2 hours.
func RefineRoundOptions(o RoundOptions, maxUnit units.Unit, solar bool) (RoundSettings, error) {
	if err := o.Validate(); err != nil {
		return RoundSettings{}, err
	}
	mode, err := roundingModeOr(o.RoundingMode, HalfExpand)
	if err != nil {
		return RoundSettings{}, err
	}
	smallest, _, err := unitInRange("smallestUnit", o.SmallestUnit, units.Nanosecond, maxUnit)
	if err != nil {
		return RoundSettings{}, err
	}
	inc, err := RefineRoundingIncrement(o.RoundingIncrement, smallest, false, solar)
	if err != nil {
		return RoundSettings{}, err
	}
	return RoundSettings{SmallestUnit: smallest, RoundingIncrement: inc, RoundingMode: mode}, nil
}

// RefineDurationRoundOptions applies duration rounding defaults. The
// smallest unit defaults to nanoseconds and the largest to
// max(smallest, defaultLargest), where defaultLargest is normally the
// duration's own largest unit.
func RefineDurationRoundOptions(o DurationRoundOptions, defaultLargest units.Unit) (DiffSettings, error) {
	if err := o.Validate(); err != nil {
		return DiffSettings{}, err
	}
	largest, hasLargest, err := unitInRange("largestUnit", o.LargestUnit, units.Nanosecond, units.Year)
	if err != nil {
		return DiffSettings{}, err
	}
	mode, err := roundingModeOr(o.RoundingMode, HalfExpand)
	if err != nil {
		return DiffSettings{}, err
	}
	smallest, hasSmallest, err := unitInRange("smallestUnit", o.SmallestUnit, units.Nanosecond, units.Year)
	if err != nil {
		return DiffSettings{}, err
	}
	if !hasSmallest {
		smallest = units.Nanosecond
	}
	if !hasLargest {
		largest = units.Max(smallest, defaultLargest)
	}
	if smallest > largest {
		return DiffSettings{}, fmt.Errorf("%w: smallestUnit %s is larger than largestUnit %s",
			apperr.ErrInvalidOption, smallest, largest)
	}
	inc, err := RefineRoundingIncrement(o.RoundingIncrement, smallest, true, false)
	if err != nil {
		return DiffSettings{}, err
	}
	return DiffSettings{LargestUnit: largest, SmallestUnit: smallest, RoundingIncrement: inc, RoundingMode: mode}, nil
}

// RefineTotalOptions returns the unit to total in.
func RefineTotalOptions(o TotalOptions) (units.Unit, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	return units.Parse(o.Unit)
}

// RefineZonedFieldOptions applies defaults: constrain, compatible, and an
// offset policy of reject (prefer when merging onto an existing value).
func RefineZonedFieldOptions(o ZonedFieldOptions, merge bool) (ZonedFieldSettings, error) {
	if err := o.Validate(); err != nil {
		return ZonedFieldSettings{}, err
	}
	epoch, err := ParseEpochDisambig(o.Disambiguation, Compatible)
	if err != nil {
		return ZonedFieldSettings{}, err
	}
	defOffset := OffsetReject
	if merge {
		defOffset = OffsetPrefer
	}
	offset, err := ParseOffsetDisambig(o.Offset, defOffset)
	if err != nil {
		return ZonedFieldSettings{}, err
	}
	overflow, err := ParseOverflow(o.Overflow, Constrain)
	if err != nil {
		return ZonedFieldSettings{}, err
	}
	return ZonedFieldSettings{Overflow: overflow, Offset: offset, Disambiguation: epoch}, nil
}

// RefineRoundingIncrement checks inc against smallest. Below day the
// increment must be less than the next unit's ratio (or at most a day's
// worth in solar mode) and divide it evenly. Day and above accept up to
// 10^9 when allowManyLarge is set, else only 1. Zero means unset.
func RefineRoundingIncrement(inc int64, smallest units.Unit, allowManyLarge, solar bool) (int64, error) {
	if inc == 0 {
		inc = 1
	}
	var upNanos int64
	switch {
	case solar:
		upNanos = units.NanoInDay
	case smallest < units.Day:
		upNanos = (smallest + 1).Nanos()
	}
	if upNanos != 0 {
		unitNanos := smallest.Nanos()
		hi := upNanos / unitNanos
		if !solar {
			hi--
		}
		if inc < 1 || inc > hi {
			return 0, fmt.Errorf("%w: roundingIncrement %d not in 1..%d for %s",
				apperr.ErrInvalidOption, inc, hi, smallest)
		}
		if upNanos%(inc*unitNanos) != 0 {
			return 0, fmt.Errorf("%w: roundingIncrement %d must divide %d", apperr.ErrInvalidOption, inc, upNanos/unitNanos)
		}
		return inc, nil
	}
	hi := int64(1)
	if allowManyLarge {
		hi = maxLargeIncrement
	}
	if inc < 1 || inc > hi {
		return 0, fmt.Errorf("%w: roundingIncrement %d not in 1..%d for %s",
			apperr.ErrInvalidOption, inc, hi, smallest)
	}
	return inc, nil
}

func unitInRange(option, name string, lo, hi units.Unit) (units.Unit, bool, error) {
	if name == "" || name == AutoUnit {
		return 0, false, nil
	}
	u, err := units.Parse(name)
	if err != nil {
		return 0, false, err
	}
	if u < lo || u > hi {
		return 0, false, fmt.Errorf("%w: %s %s not in %s..%s", apperr.ErrInvalidOption, option, u, lo, hi)
	}
	return u, true, nil
}

func roundingModeOr(s string, def RoundingMode) (RoundingMode, error) {
	if s == "" {
		return def, nil
	}
	return ParseRoundingMode(s)
}

func unitName(allowAuto bool) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" || (allowAuto && s == AutoUnit) {
			return nil
		}
		if _, err := units.Parse(s); err != nil {
			return fmt.Errorf("unknown unit %q", s)
		}
		return nil
	}
}

func anyOf(names []string) []interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apperr.ErrInvalidOption, err)
}
