// Package options translates caller-facing option names into the enums the
// engine consumes, and refines option bags into validated tuples.
package options

import (
	"fmt"
	"strings"

	"github.com/starford/tempus/internal/apperr"
)

// Overflow decides what happens to out-of-range fields.
type Overflow int

const (
	Constrain Overflow = iota
	Reject
)

// OffsetDisambig decides how an explicit UTC offset is reconciled with the zone.
type OffsetDisambig int

const (
	OffsetReject OffsetDisambig = iota
	OffsetUse
	OffsetPrefer
	OffsetIgnore
)

// EpochDisambig picks an instant for a local time in a gap or overlap.
type EpochDisambig int

const (
	Compatible EpochDisambig = iota
	EpochReject
	Earlier
	Later
)

var (
	overflowNames       = []string{"constrain", "reject"}
	offsetDisambigNames = []string{"reject", "use", "prefer", "ignore"}
	epochDisambigNames  = []string{"compatible", "reject", "earlier", "later"}
)

// OverflowNames, OffsetNames and DisambiguationNames list accepted spellings.
func OverflowNames() []string       { return append([]string(nil), overflowNames...) }
func OffsetNames() []string         { return append([]string(nil), offsetDisambigNames...) }
func DisambiguationNames() []string { return append([]string(nil), epochDisambigNames...) }

// RoundingModeNames lists accepted rounding mode spellings.
func RoundingModeNames() []string { return append([]string(nil), roundingModeNames[:]...) }

func (o Overflow) String() string       { return nameOf(overflowNames, int(o)) }
func (o OffsetDisambig) String() string { return nameOf(offsetDisambigNames, int(o)) }
func (e EpochDisambig) String() string  { return nameOf(epochDisambigNames, int(e)) }

// ParseOverflow returns def for an empty name.
func ParseOverflow(s string, def Overflow) (Overflow, error) {
	i, err := parseChoice("overflow", overflowNames, s, int(def))
	return Overflow(i), err
}

// ParseOffsetDisambig returns def for an empty name.
func ParseOffsetDisambig(s string, def OffsetDisambig) (OffsetDisambig, error) {
	i, err := parseChoice("offset", offsetDisambigNames, s, int(def))
	return OffsetDisambig(i), err
}

// ParseEpochDisambig returns def for an empty name.
func ParseEpochDisambig(s string, def EpochDisambig) (EpochDisambig, error) {
	i, err := parseChoice("disambiguation", epochDisambigNames, s, int(def))
	return EpochDisambig(i), err
}

func parseChoice(option string, names []string, s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s must be one of %s, got %q",
		apperr.ErrInvalidOption, option, strings.Join(names, ", "), s)
}

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("choice(%d)", i)
	}
	return names[i]
}
