package column

import (
	"time"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// addValueLinear implements the linear-scale column state machine: additive
// box boundaries, integer box counts.
func (c *Column) addValueLinear(price pfdecimal.Decimal, t time.Time) (Result, error) {
	if c.isEmpty() {
		rounded, err := c.boxesRef.RoundDownToBox(price)
		if err != nil {
			return Result{}, err
		}
		c.Top = rounded
		c.Bottom = rounded
		c.TimeSpan = TimeSpan{First: t, Last: t}
		return Result{Status: Accepted}, nil
	}

	v := price
	if c.boxesRef.BoxType == boxes.Integral {
		v = price.TruncateInt()
	}

	switch c.Direction {
	case Unknown:
		return c.tryToFindDirectionLinear(v, t)
	case Up:
		return c.tryToExtendUpLinear(v, t)
	default:
		return c.tryToExtendDownLinear(v, t)
	}
}

// boxCount returns truncate_to_int(diff / boxSize).
func boxCount(diff, boxSize pfdecimal.Decimal) (pfdecimal.Decimal, error) {
	q, err := diff.Div(boxSize)
	if err != nil {
		return pfdecimal.Decimal{}, err
	}
	return q.TruncateInt(), nil
}

func (c *Column) tryToFindDirectionLinear(v pfdecimal.Decimal, t time.Time) (Result, error) {
	boxSize := c.boxesRef.BoxSize

	if v.GreaterThanOrEqual(c.Top.Add(boxSize)) {
		c.Direction = Up
		k, err := boxCount(v.Sub(c.Top), boxSize)
		if err != nil {
			return Result{}, err
		}
		c.Top = c.Top.Add(k.Mul(boxSize))
		c.TimeSpan.Last = t
		return Result{Status: Accepted}, nil
	}
	if v.LessThanOrEqual(c.Bottom.Sub(boxSize)) {
		c.Direction = Down
		k, err := boxCount(v.Sub(c.Bottom), boxSize)
		if err != nil {
			return Result{}, err
		}
		c.Bottom = c.Bottom.Add(k.Mul(boxSize))
		c.TimeSpan.Last = t
		return Result{Status: Accepted}, nil
	}
	return Result{Status: Ignored}, nil
}

func (c *Column) tryToExtendUpLinear(v pfdecimal.Decimal, t time.Time) (Result, error) {
	boxSize := c.boxesRef.BoxSize

	if v.GreaterThanOrEqual(c.Top.Add(boxSize)) {
		k, err := boxCount(v.Sub(c.Top), boxSize)
		if err != nil {
			return Result{}, err
		}
		c.Top = c.Top.Add(k.Mul(boxSize))
		c.TimeSpan.Last = t
		return Result{Status: Accepted}, nil
	}

	reversalThreshold := c.Top.Sub(boxSize.Mul(pfdecimal.NewFromInt(int64(c.ReversalBoxes))))
	if v.LessThanOrEqual(reversalThreshold) {
		c.TimeSpan.Last = t

		if c.ReversalBoxes == 1 {
			if c.Bottom.LessThan(c.Top.Sub(boxSize)) {
				// Column already advanced past its initial box: the box
				// one step back is occupied, so it cannot reverse in place.
				successor := c.makeReversalColumn(Down, c.Top.Sub(boxSize), t)
				return Result{Status: Reversal, Successor: &successor}, nil
			}
			k, err := boxCount(v.Sub(c.Bottom), boxSize)
			if err != nil {
				return Result{}, err
			}
			c.Bottom = c.Bottom.Add(k.Mul(boxSize))
			c.HadReversal = true
			c.Direction = Down
			return Result{Status: Accepted}, nil
		}

		successor := c.makeReversalColumn(Down, reversalThreshold, t)
		return Result{Status: Reversal, Successor: &successor}, nil
	}
	return Result{Status: Ignored}, nil
}

func (c *Column) tryToExtendDownLinear(v pfdecimal.Decimal, t time.Time) (Result, error) {
	boxSize := c.boxesRef.BoxSize

	if v.LessThanOrEqual(c.Bottom.Sub(boxSize)) {
		k, err := boxCount(v.Sub(c.Bottom), boxSize)
		if err != nil {
			return Result{}, err
		}
		c.Bottom = c.Bottom.Add(k.Mul(boxSize))
		c.TimeSpan.Last = t
		return Result{Status: Accepted}, nil
	}

	reversalThreshold := c.Bottom.Add(boxSize.Mul(pfdecimal.NewFromInt(int64(c.ReversalBoxes))))
	if v.GreaterThanOrEqual(reversalThreshold) {
		c.TimeSpan.Last = t

		if c.ReversalBoxes == 1 {
			if c.Top.GreaterThan(c.Bottom.Add(boxSize)) {
				successor := c.makeReversalColumn(Up, c.Bottom.Add(boxSize), t)
				return Result{Status: Reversal, Successor: &successor}, nil
			}
			k, err := boxCount(v.Sub(c.Top), boxSize)
			if err != nil {
				return Result{}, err
			}
			c.Top = c.Top.Add(k.Mul(boxSize))
			c.HadReversal = true
			c.Direction = Up
			return Result{Status: Accepted}, nil
		}

		successor := c.makeReversalColumn(Up, reversalThreshold, t)
		return Result{Status: Reversal, Successor: &successor}, nil
	}
	return Result{Status: Ignored}, nil
}

// makeReversalColumn builds the successor column c hands off to on a real
// (not in-place) reversal. value is the reversal-threshold boundary computed
// by the caller; the other boundary is derived from c's own top or bottom one
// box back. The caller must feed the triggering price to the successor once
// more to complete placement.
func (c *Column) makeReversalColumn(direction Direction, value pfdecimal.Decimal, t time.Time) Column {
	var top, bottom pfdecimal.Decimal
	if direction == Down {
		top = c.Top.Sub(c.boxesRef.BoxSize)
		bottom = value
	} else {
		top = value
		bottom = c.Bottom.Add(c.boxesRef.BoxSize)
	}
	return Column{
		boxesRef:      c.boxesRef,
		ReversalBoxes: c.ReversalBoxes,
		Direction:     direction,
		Top:           top,
		Bottom:        bottom,
		TimeSpan:      TimeSpan{First: t, Last: t},
	}
}
