// Package column implements the Point & Figure column state machine: the
// logic that decides, for one price observation at a time, whether a column
// extends, ignores the observation, or terminates and hands off to a
// successor column.
package column

import (
	"time"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// TimeSpan records the first and most recent accepted observation times for
// a column.
type TimeSpan struct {
	First time.Time
	Last  time.Time
}

// Column is a single maximal run of box moves in one direction. A Column
// never owns the Boxes configuration it was built from — it borrows a copy
// by value, matching the spec's resolution of the source's raw-back-pointer
// coupling (see DESIGN.md).
type Column struct {
	boxesRef boxes.Config

	ReversalBoxes int
	Direction     Direction
	Top           pfdecimal.Decimal
	Bottom        pfdecimal.Decimal
	HadReversal   bool
	TimeSpan      TimeSpan
}

// New builds an empty Column bound to the given Boxes configuration and
// reversal count. Top and Bottom are set to the NegOne sentinel until the
// first observation lands.
func New(b boxes.Config, reversalBoxes int) Column {
	return Column{
		boxesRef:      b,
		ReversalBoxes: reversalBoxes,
		Direction:     Unknown,
		Top:           pfdecimal.NegOne,
		Bottom:        pfdecimal.NegOne,
	}
}

// isEmpty reports whether no price has landed in this column yet.
func (c *Column) isEmpty() bool {
	return c.Top.Equal(pfdecimal.NegOne) && c.Bottom.Equal(pfdecimal.NegOne)
}

// Result is the outcome of feeding one observation to a Column.
type Result struct {
	Status    Status
	Successor *Column
}

// AddValue feeds one (price, time) observation to the column and returns the
// outcome. On Reversal, the caller must feed the same price to Result.
// Successor exactly once to complete placement. Successor's top and bottom
// are already seeded to cover the price, so that call returns Ignored unless
// the price gapped past the seeded boundary, in which case it extends the
// successor and returns Accepted.
func (c *Column) AddValue(price pfdecimal.Decimal, t time.Time) (Result, error) {
	if c.boxesRef.BoxScale == boxes.Percent {
		return c.addValuePercent(price, t)
	}
	return c.addValueLinear(price, t)
}

// Equal reports whether two columns describe the same state: same Boxes
// configuration, reversal count, direction, top, bottom and had_reversal
// flag. TimeSpan is deliberately excluded, matching the source's own Column
// equality, so that Chart equality (which delegates to this) can hold for
// two replays of the same price sequence at different wall-clock times.
func (c Column) Equal(other Column) bool {
	return c.boxesRef.Equal(other.boxesRef) &&
		c.ReversalBoxes == other.ReversalBoxes &&
		c.Direction == other.Direction &&
		c.Top.Equal(other.Top) &&
		c.Bottom.Equal(other.Bottom) &&
		c.HadReversal == other.HadReversal
}

// Boxes returns the Boxes configuration this column was built from.
func (c Column) Boxes() boxes.Config { return c.boxesRef }
