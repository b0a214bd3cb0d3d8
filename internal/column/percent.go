package column

import (
	"time"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// addValuePercent implements the percent-scale column state machine:
// multiplicative box boundaries, rescaled to percent_exponent after every
// step so representations stay bounded under repeated multiplication.
func (c *Column) addValuePercent(price pfdecimal.Decimal, t time.Time) (Result, error) {
	if c.isEmpty() {
		c.Top = price
		c.Bottom = price
		c.TimeSpan = TimeSpan{First: t, Last: t}
		return Result{Status: Accepted}, nil
	}

	switch c.Direction {
	case Unknown:
		return c.tryToFindDirectionPercent(price, t), nil
	case Up:
		return c.tryToExtendUpPercent(price, t), nil
	default:
		return c.tryToExtendDownPercent(price, t), nil
	}
}

func (c *Column) tryToFindDirectionPercent(price pfdecimal.Decimal, t time.Time) Result {
	exp := c.boxesRef.PercentExponent()
	upFactor := c.boxesRef.UpFactor()
	downFactor := c.boxesRef.DownFactor()

	if price.GreaterThanOrEqual(c.Top.Mul(upFactor)) {
		c.Direction = Up
		for price.GreaterThanOrEqual(c.Top.Mul(upFactor)) {
			c.Top = c.Top.Mul(upFactor)
		}
		c.Top = c.Top.Rescale(exp)
		c.TimeSpan.Last = t
		return Result{Status: Accepted}
	}
	if price.LessThanOrEqual(c.Bottom.Mul(downFactor)) {
		c.Direction = Down
		for price.LessThanOrEqual(c.Bottom.Mul(downFactor)) {
			c.Bottom = c.Bottom.Mul(downFactor)
		}
		c.Bottom = c.Bottom.Rescale(exp)
		c.TimeSpan.Last = t
		return Result{Status: Accepted}
	}
	return Result{Status: Ignored}
}

func (c *Column) tryToExtendUpPercent(price pfdecimal.Decimal, t time.Time) Result {
	exp := c.boxesRef.PercentExponent()
	upFactor := c.boxesRef.UpFactor()
	downFactor := c.boxesRef.DownFactor()

	if price.GreaterThanOrEqual(c.Top.Mul(upFactor)) {
		for price.GreaterThanOrEqual(c.Top.Mul(upFactor)) {
			c.Top = c.Top.Mul(upFactor)
		}
		c.Top = c.Top.Rescale(exp)
		c.TimeSpan.Last = t
		return Result{Status: Accepted}
	}

	reversalDownFactor := c.boxesRef.ReversalDownFactor(c.ReversalBoxes)
	if price.LessThanOrEqual(c.Top.Mul(reversalDownFactor)) {
		c.TimeSpan.Last = t

		if c.ReversalBoxes == 1 {
			if c.Bottom.LessThan(c.Top.Mul(downFactor)) {
				value := c.Top.Mul(downFactor).Rescale(exp)
				successor := c.makeReversalColumnPercent(Down, value, t)
				return Result{Status: Reversal, Successor: &successor}
			}
			for price.LessThanOrEqual(c.Bottom.Mul(downFactor)) {
				c.Bottom = c.Bottom.Mul(downFactor)
			}
			c.Bottom = c.Bottom.Rescale(exp)
			c.HadReversal = true
			c.Direction = Down
			return Result{Status: Accepted}
		}

		value := c.Top.Mul(reversalDownFactor).Rescale(exp)
		successor := c.makeReversalColumnPercent(Down, value, t)
		return Result{Status: Reversal, Successor: &successor}
	}
	return Result{Status: Ignored}
}

func (c *Column) tryToExtendDownPercent(price pfdecimal.Decimal, t time.Time) Result {
	exp := c.boxesRef.PercentExponent()
	upFactor := c.boxesRef.UpFactor()
	downFactor := c.boxesRef.DownFactor()

	if price.LessThanOrEqual(c.Bottom.Mul(downFactor)) {
		for price.LessThanOrEqual(c.Bottom.Mul(downFactor)) {
			c.Bottom = c.Bottom.Mul(downFactor)
		}
		c.Bottom = c.Bottom.Rescale(exp)
		c.TimeSpan.Last = t
		return Result{Status: Accepted}
	}

	reversalUpFactor := c.boxesRef.ReversalUpFactor(c.ReversalBoxes)
	if price.GreaterThanOrEqual(c.Bottom.Mul(reversalUpFactor)) {
		c.TimeSpan.Last = t

		if c.ReversalBoxes == 1 {
			if c.Top.GreaterThan(c.Bottom.Mul(upFactor)) {
				value := c.Bottom.Mul(upFactor).Rescale(exp)
				successor := c.makeReversalColumnPercent(Up, value, t)
				return Result{Status: Reversal, Successor: &successor}
			}
			for price.GreaterThanOrEqual(c.Top.Mul(upFactor)) {
				c.Top = c.Top.Mul(upFactor)
			}
			c.Top = c.Top.Rescale(exp)
			c.HadReversal = true
			c.Direction = Up
			return Result{Status: Accepted}
		}

		value := c.Bottom.Mul(reversalUpFactor).Rescale(exp)
		successor := c.makeReversalColumnPercent(Up, value, t)
		return Result{Status: Reversal, Successor: &successor}
	}
	return Result{Status: Ignored}
}

// makeReversalColumnPercent is the percent-scale counterpart of
// makeReversalColumn: the non-seeded boundary advances by one multiplicative
// step instead of one additive box.
func (c *Column) makeReversalColumnPercent(direction Direction, value pfdecimal.Decimal, t time.Time) Column {
	exp := c.boxesRef.PercentExponent()
	var top, bottom pfdecimal.Decimal
	if direction == Down {
		top = c.Top.Mul(c.boxesRef.DownFactor()).Rescale(exp)
		bottom = value
	} else {
		top = value
		bottom = c.Bottom.Mul(c.boxesRef.UpFactor()).Rescale(exp)
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
