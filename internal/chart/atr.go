package chart

import (
	"errors"
	"fmt"
	"time"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// ErrInsufficientData is returned when ComputeATR is given fewer rows than
// it needs.
var ErrInsufficientData = errors.New("insufficient data for ATR")

// OHLCRow is one bar of historical open/high/low/close/adjusted data. Date
// identifies the bar; ComputeATR only reads High/Low/Close (and their
// adjusted counterparts) and requires rows ordered descending by Date.
type OHLCRow struct {
	Date                               time.Time
	Open, High, Low, Close             pfdecimal.Decimal
	AdjOpen, AdjHigh, AdjLow, AdjClose pfdecimal.Decimal
}

// ComputeATR computes the average true range over the first nDays rows of
// data, which must be ordered descending by date (most recent first). True
// range for row i is max(high_i - low_i, |high_i - close_{i+1}|, |low_i -
// close_{i+1}|); ATR is the arithmetic mean of the first nDays true ranges
// — a plain mean, not an exponentially smoothed one, matching the
// reference implementation despite the "Wilder-style" name this technique
// is usually given. useAdjusted selects the adjusted OHLC fields.
//
// This helper is used by callers to size box_size before constructing a
// Chart; it has no role in the column state machine itself.
func ComputeATR(data []OHLCRow, nDays int, useAdjusted bool) (pfdecimal.Decimal, error) {
	if len(data) <= nDays {
		return pfdecimal.Decimal{}, fmt.Errorf("%w: need more than %d rows, got %d", ErrInsufficientData, nDays, len(data))
	}

	total := pfdecimal.Zero
	for i := 0; i < nDays; i++ {
		high, low, prevClose := data[i].High, data[i].Low, data[i+1].Close
		if useAdjusted {
			high, low, prevClose = data[i].AdjHigh, data[i].AdjLow, data[i+1].AdjClose
		}

		highMinusLow := high.Sub(low)
		highMinusPrevClose := high.Sub(prevClose).Abs()
		lowMinusPrevClose := low.Sub(prevClose).Abs()

		trueRange := pfdecimal.Max(highMinusLow, pfdecimal.Max(highMinusPrevClose, lowMinusPrevClose))
		total = total.Add(trueRange)
	}

	n, err := pfdecimal.NewFromString(fmt.Sprintf("%d", nDays))
	if err != nil {
		return pfdecimal.Decimal{}, err
	}
	atr, err := total.Div(n)
	if err != nil {
		return pfdecimal.Decimal{}, err
	}
	return atr, nil
}
