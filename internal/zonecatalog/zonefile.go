package zonecatalog

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/units"
)

var zoneIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+\-]*(/[A-Za-z0-9_+\-]+)*$`)

// zoneFile is the on-disk shape of one catalog zone:
//
//	id: Test/Eastern
//	initial_offset: "-05:00"
//	transitions:
//	  - at: 2021-03-14T07:00:00Z
//	    offset: "-04:00"
type zoneFile struct {
	ID            string           `yaml:"id"`
	InitialOffset string           `yaml:"initial_offset"`
	Transitions   []transitionFile `yaml:"transitions"`
}

type transitionFile struct {
	At     string `yaml:"at"`
	Offset string `yaml:"offset"`
}

func (f zoneFile) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.ID, validation.Required, validation.Match(zoneIDPattern)),
		validation.Field(&f.InitialOffset, validation.Required),
		validation.Field(&f.Transitions),
	)
}

func (t transitionFile) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.At, validation.Required, validation.Date(time.RFC3339Nano)),
		validation.Field(&t.Offset, validation.Required),
	)
}

// parseZone decodes and validates one zone file.
func parseZone(data []byte) (*timezone.Table, error) {
	var f zoneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("zonecatalog: %w: %v", apperr.ErrInvalidOption, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("zonecatalog: %w: %v", apperr.ErrInvalidOption, err)
	}
	initial, err := timezone.ParseOffset(f.InitialOffset)
	if err != nil {
		return nil, err
	}
	ts := make([]timezone.Transition, 0, len(f.Transitions))
	for _, t := range f.Transitions {
		at, err := time.Parse(time.RFC3339Nano, t.At)
		if err != nil {
			return nil, fmt.Errorf("zonecatalog: %w: at %q", apperr.ErrInvalidOption, t.At)
		}
		off, err := timezone.ParseOffset(t.Offset)
		if err != nil {
			return nil, err
		}
		ts = append(ts, timezone.Transition{At: epochOf(at), Offset: off})
	}
	return timezone.NewTable(f.ID, initial, ts)
}

func epochOf(t time.Time) daytime.Nano {
	sec := t.Unix()
	const secPerDay = units.NanoInDay / units.NanoInSecond
	return daytime.New(sec/secPerDay, (sec%secPerDay)*units.NanoInSecond+int64(t.Nanosecond()))
}
