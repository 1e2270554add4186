// Package apperr defines the error taxonomy shared by the engine and the service layers.
package apperr

import "errors"

var (
	// ErrRangeOverflow: a field or computed instant exceeds supported bounds.
	ErrRangeOverflow = errors.New("range overflow")
	// ErrInvalidFieldCombination: conflicting fields were supplied to a calendar.
	ErrInvalidFieldCombination = errors.New("invalid field combination")
	// ErrAmbiguousTime: a Reject disambiguation policy hit a gap, overlap or offset mismatch.
	ErrAmbiguousTime = errors.New("ambiguous time")
	// ErrMissingRelativeTo: a calendar-relative operation lacked its reference point.
	ErrMissingRelativeTo = errors.New("relativeTo is required")
	// ErrMixedSign: duration fields carry both positive and negative values.
	ErrMixedSign = errors.New("mixed-sign duration")
	// ErrFaultyCalendarResult: a calendar or time zone returned results violating its contract.
	ErrFaultyCalendarResult = errors.New("faulty calendar result")
	// ErrNonMonotonicCalendar: moving by one unit did not advance the epoch.
	ErrNonMonotonicCalendar = errors.New("non-monotonic calendar")
	// ErrPrecisionLoss: a value cannot be represented without rounding.
	ErrPrecisionLoss = errors.New("precision loss")

	ErrInvalidOption       = errors.New("invalid option")
	ErrUnknownCalendar     = errors.New("unknown calendar")
	ErrUnknownTimeZone     = errors.New("unknown time zone")
	ErrMismatchedCalendars = errors.New("mismatched calendars")
	ErrMismatchedTimeZones = errors.New("mismatched time zones")
	// ErrUnsupportedOperation: the value kind does not support the operation.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Class groups errors by who is at fault.
type Class string

const (
	ClassNone     Class = ""
	ClassInput    Class = "input"
	ClassRange    Class = "range"
	ClassContract Class = "contract"
	ClassInternal Class = "internal"
)

var contractErrors = []error{ErrFaultyCalendarResult, ErrNonMonotonicCalendar}

var inputErrors = []error{
	ErrInvalidFieldCombination,
	ErrAmbiguousTime,
	ErrMissingRelativeTo,
	ErrMixedSign,
	ErrInvalidOption,
	ErrUnknownCalendar,
	ErrUnknownTimeZone,
	ErrMismatchedCalendars,
	ErrMismatchedTimeZones,
	ErrUnsupportedOperation,
}

var rangeErrors = []error{ErrRangeOverflow, ErrPrecisionLoss}

// IsContractViolation reports whether err was caused by a plugged-in calendar or
// time zone breaking its contract rather than by bad input.
func IsContractViolation(err error) bool {
	return isOneOf(err, contractErrors)
}

// IsInput reports whether err is an ordinary caller mistake.
func IsInput(err error) bool {
	return isOneOf(err, inputErrors)
}

// IsRange reports whether err is an out-of-range or precision failure.
func IsRange(err error) bool {
	return isOneOf(err, rangeErrors)
}

// ClassOf returns the class of err.
func ClassOf(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case IsContractViolation(err):
		return ClassContract
	case IsInput(err):
		return ClassInput
	case IsRange(err):
		return ClassRange
	}
	return ClassInternal
}

func isOneOf(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
