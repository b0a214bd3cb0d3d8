package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

func row(high, low, close string) OHLCRow {
	return OHLCRow{
		High:  pfdecimal.MustFromString(high),
		Low:   pfdecimal.MustFromString(low),
		Close: pfdecimal.MustFromString(close),
	}
}

func Test_ComputeATR_PlainArithmeticMean(t *testing.T) {
	// Descending by date, most recent first. True range per row uses the
	// *next* (older) row's close.
	data := []OHLCRow{
		row("105", "100", "102"), // TR = max(5, |105-101|=4, |100-101|=1) = 5
		row("103", "99", "101"),  // TR = max(4, |103-100|=3, |99-100|=1) = 4
		row("104", "100", "100"),
	}

	atr, err := ComputeATR(data, 2, false)
	require.NoError(t, err)
	assert.Equal(t, "4.5", atr.String())
}

func Test_ComputeATR_InsufficientData(t *testing.T) {
	data := []OHLCRow{row("10", "9", "9.5")}
	_, err := ComputeATR(data, 2, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func Test_ComputeATR_UsesAdjustedFields(t *testing.T) {
	data := []OHLCRow{
		{High: pfdecimal.MustFromString("200"), Low: pfdecimal.MustFromString("190"), Close: pfdecimal.MustFromString("195"),
			AdjHigh: pfdecimal.MustFromString("105"), AdjLow: pfdecimal.MustFromString("100"), AdjClose: pfdecimal.MustFromString("102")},
		{High: pfdecimal.MustFromString("199"), Low: pfdecimal.MustFromString("189"), Close: pfdecimal.MustFromString("194"),
			AdjHigh: pfdecimal.MustFromString("103"), AdjLow: pfdecimal.MustFromString("99"), AdjClose: pfdecimal.MustFromString("101")},
	}

	atr, err := ComputeATR(data, 1, true)
	require.NoError(t, err)
	// TR row0 adjusted = max(105-100=5, |105-101|=4, |100-101|=1) = 5
	assert.Equal(t, "5", atr.String())
}
