package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
)

func Test_SnapshotRoundTrip(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := New("TEST", b, 3)
	feed(t, &c, []string{"10", "11", "12", "13", "10"}, 0)

	snap := c.ToSnapshot()
	decoded, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.True(t, c.Equal(decoded))
}

func Test_SnapshotRoundTrip_Percent(t *testing.T) {
	b := mustBoxes(t, "0.04", boxes.Fractional, boxes.Percent)
	c := New("TEST", b, 3)
	feed(t, &c, []string{"100", "104", "108.16"}, 0)

	snap := c.ToSnapshot()
	decoded, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.True(t, c.Equal(decoded))
}

func Test_MarshalJSON_RoundTrip(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := New("TEST", b, 3)
	feed(t, &c, []string{"10", "11", "12"}, 0)

	data, err := c.MarshalJSON()
	require.NoError(t, err)

	var decoded Chart
	require.NoError(t, decoded.UnmarshalJSON(data))
	assert.True(t, c.Equal(decoded))
}

func Test_FromSnapshot_MalformedCurrentDirection(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := New("TEST", b, 3)
	snap := c.ToSnapshot()
	snap.CurrentDirection = "sideways"

	_, err := FromSnapshot(snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}

func Test_FromSnapshot_MalformedYMin(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := New("TEST", b, 3)
	snap := c.ToSnapshot()
	snap.YMin = "not-a-number"

	_, err := FromSnapshot(snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}

func Test_ToSnapshot_CarriesBoxesRedundantly(t *testing.T) {
	b := mustBoxes(t, "2", boxes.Fractional, boxes.Linear)
	c := New("TEST", b, 3)

	snap := c.ToSnapshot()
	assert.Equal(t, "2", snap.Boxes.BoxSize)
	assert.Equal(t, "fractional", snap.Boxes.BoxType)
	assert.Equal(t, "linear", snap.Boxes.BoxScale)
}
