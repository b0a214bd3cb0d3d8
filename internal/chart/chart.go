// Package chart sequences Column state machines into a Point & Figure
// chart: it routes observations to the current column, rotates columns on
// reversal, and tracks chart-wide extrema and direction.
package chart

import (
	"time"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/column"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// Chart owns one Boxes configuration, a sequence of closed columns, and one
// open current column.
type Chart struct {
	Boxes   boxes.Config
	Symbol  string
	Columns []column.Column

	CurrentColumn column.Column

	YMin, YMax pfdecimal.Decimal

	FirstDate       time.Time
	LastChangeDate  time.Time
	LastCheckedDate time.Time

	CurrentDirection column.Direction
}

// New builds an empty Chart: one open, empty current column and no closed
// columns.
func New(symbol string, b boxes.Config, reversalBoxes int) Chart {
	return Chart{
		Boxes:            b,
		Symbol:           symbol,
		CurrentColumn:    column.New(b, reversalBoxes),
		YMin:             pfdecimal.NegOne,
		YMax:             pfdecimal.NegOne,
		CurrentDirection: column.Unknown,
	}
}

// AddValue feeds one (price, time) observation to the current column. On a
// reversal the current column is closed into Columns, replaced by the
// returned successor, and the price is re-fed exactly once to complete
// placement. Such a call returns Reversal; the replay's own status is not
// returned.
func (c *Chart) AddValue(price pfdecimal.Decimal, t time.Time) (column.Status, error) {
	if c.FirstDate.IsZero() {
		c.FirstDate = t
	}
	c.LastCheckedDate = t

	result, err := c.CurrentColumn.AddValue(price, t)
	if err != nil {
		return 0, err
	}

	status := result.Status
	if status == column.Reversal {
		c.Columns = append(c.Columns, c.CurrentColumn)
		c.CurrentColumn = *result.Successor

		// The successor's boundaries are already seeded by
		// makeReversalColumn; this replay only finishes placing the price
		// (extending further if it gapped past the seeded boundary) and is
		// not itself reported to the caller — the status for this whole
		// call is Reversal regardless of what the replay's own outcome was.
		if _, err := c.CurrentColumn.AddValue(price, t); err != nil {
			return 0, err
		}
	}

	c.updateExtrema()

	if status == column.Accepted || status == column.Reversal {
		c.LastChangeDate = t
	}
	c.CurrentDirection = c.CurrentColumn.Direction

	return status, nil
}

// updateExtrema folds the current column's top and bottom into YMin/YMax.
// The sentinel NegOne is excluded: it means "nothing observed yet" for the
// current column, not a value smaller than any real price.
func (c *Chart) updateExtrema() {
	top, bottom := c.CurrentColumn.Top, c.CurrentColumn.Bottom
	if top.Equal(pfdecimal.NegOne) {
		return
	}
	if c.YMax.Equal(pfdecimal.NegOne) || top.GreaterThan(c.YMax) {
		c.YMax = top
	}
	if c.YMin.Equal(pfdecimal.NegOne) || bottom.LessThan(c.YMin) {
		c.YMin = bottom
	}
}

// NumberOfColumns returns the number of closed columns plus the current
// (always-present) column.
func (c Chart) NumberOfColumns() int {
	return len(c.Columns) + 1
}

// YLimits returns the chart-wide running extremes.
func (c Chart) YLimits() (pfdecimal.Decimal, pfdecimal.Decimal) {
	return c.YMin, c.YMax
}

// Equal reports whether two Charts describe the same series. Per the
// source's own equality contract, dates are excluded.
func (c Chart) Equal(other Chart) bool {
	if c.Symbol != other.Symbol {
		return false
	}
	if !c.Boxes.Equal(other.Boxes) {
		return false
	}
	if !c.YMin.Equal(other.YMin) || !c.YMax.Equal(other.YMax) {
		return false
	}
	if c.CurrentDirection != other.CurrentDirection {
		return false
	}
	if len(c.Columns) != len(other.Columns) {
		return false
	}
	for i := range c.Columns {
		if !c.Columns[i].Equal(other.Columns[i]) {
			return false
		}
	}
	return c.CurrentColumn.Equal(other.CurrentColumn)
}
