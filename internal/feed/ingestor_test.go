package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/chart"
	"github.com/FrithiofJensen/point-figure/internal/column"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// sliceSource streams a fixed slice of Observations, one at a time, closing
// the channel once exhausted or ctx is cancelled. It stands in for a real
// Source (file tail, WebSocket) in tests of the Ingestor's consumer loop.
type sliceSource struct {
	obs []Observation
}

func (s *sliceSource) Stream(ctx context.Context) (<-chan Observation, error) {
	out := make(chan Observation)
	go func() {
		defer close(out)
		for _, o := range s.obs {
			select {
			case out <- o:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func mustBoxes(t *testing.T, boxSize string, boxType boxes.Type, boxScale boxes.Scale) boxes.Config {
	t.Helper()
	cfg, err := boxes.NewConfig(boxSize, boxType, boxScale)
	require.NoError(t, err)
	return cfg
}

func at(seconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, seconds, 0, time.UTC)
}

func Test_Ingestor_FeedsChartInOrder(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := chart.New("TEST", b, 3)

	src := &sliceSource{obs: []Observation{
		{Time: at(0), Price: pfdecimal.MustFromString("10")},
		{Time: at(1), Price: pfdecimal.MustFromString("11")},
		{Time: at(2), Price: pfdecimal.MustFromString("12")},
		{Time: at(3), Price: pfdecimal.MustFromString("13")},
	}}

	var statuses []column.Status
	ig := NewIngestor(src, &c, func(_ Observation, status column.Status, err error) {
		require.NoError(t, err)
		statuses = append(statuses, status)
	})

	require.NoError(t, ig.Start(context.Background()))

	require.Eventually(t, func() bool { return len(statuses) == 4 }, time.Second, time.Millisecond)

	require.NoError(t, ig.Stop())

	assert.Equal(t, column.Accepted, statuses[0])
	assert.Equal(t, "10", c.CurrentColumn.Bottom.String())
	assert.Equal(t, "13", c.CurrentColumn.Top.String())
}

func Test_Ingestor_DoubleStartFails(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := chart.New("TEST", b, 3)
	ig := NewIngestor(&sliceSource{}, &c, nil)

	require.NoError(t, ig.Start(context.Background()))
	err := ig.Start(context.Background())
	require.Error(t, err)

	require.NoError(t, ig.Stop())
}

func Test_Ingestor_StopBeforeStartFails(t *testing.T) {
	b := mustBoxes(t, "1", boxes.Integral, boxes.Linear)
	c := chart.New("TEST", b, 3)
	ig := NewIngestor(&sliceSource{}, &c, nil)

	err := ig.Stop()
	require.Error(t, err)
}
