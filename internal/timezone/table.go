package timezone

import (
	"fmt"
	"sort"

	"github.com/starford/tempus/internal/apperr"
	"github.com/starford/tempus/internal/daytime"
	"github.com/starford/tempus/internal/iso"
	"github.com/starford/tempus/internal/mathx"
	"github.com/starford/tempus/internal/units"
)

// Transition switches a zone to Offset from the instant At onward.
type Transition struct {
	At     daytime.Nano
	Offset int64
}

// Table is a zone defined by an explicit list of offset transitions.
type Table struct {
	id          string
	initial     int64
	transitions []Transition
}

// NewTable sorts transitions and checks every offset is below a day and no
// two transitions share an instant.
func NewTable(id string, initial int64, transitions []Transition) (*Table, error) {
	ts := append([]Transition(nil), transitions...)
	sort.Slice(ts, func(i, j int) bool { return daytime.Compare(ts[i].At, ts[j].At) < 0 })
	if mathx.Abs(initial) >= units.NanoInDay {
		return nil, fmt.Errorf("timezone: %w: %s initial offset %d", apperr.ErrRangeOverflow, id, initial)
	}
	for i, t := range ts {
		if mathx.Abs(t.Offset) >= units.NanoInDay {
			return nil, fmt.Errorf("timezone: %w: %s offset %d", apperr.ErrRangeOverflow, id, t.Offset)
		}
		if i > 0 && daytime.Compare(ts[i-1].At, t.At) == 0 {
			return nil, fmt.Errorf("timezone: %w: %s has two transitions at %s",
				apperr.ErrInvalidFieldCombination, id, t.At)
		}
	}
	return &Table{id: id, initial: initial, transitions: ts}, nil
}

func (t *Table) ID() string { return t.id }

func (t *Table) OffsetNanosecondsFor(epoch daytime.Nano) (int64, error) {
	i := sort.Search(len(t.transitions), func(i int) bool {
		return daytime.Compare(t.transitions[i].At, epoch) > 0
	})
	if i == 0 {
		return t.initial, nil
	}
	return t.transitions[i-1].Offset, nil
}

func (t *Table) PossibleInstantsFor(dt iso.DateTime) ([]daytime.Nano, error) {
	return PossibleInstants(t, dt)
}

// Transitions returns a copy of the sorted transition list.
func (t *Table) Transitions() []Transition {
	return append([]Transition(nil), t.transitions...)
}
