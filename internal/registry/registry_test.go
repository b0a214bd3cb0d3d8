package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/feed"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// sliceSource streams a fixed slice of Observations for testing, the same
// fake used by internal/feed's own Ingestor tests.
type sliceSource struct {
	obs []feed.Observation
}

func (s *sliceSource) Stream(ctx context.Context) (<-chan feed.Observation, error) {
	out := make(chan feed.Observation)
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

func mustBoxes(t *testing.T) boxes.Config {
	t.Helper()
	cfg, err := boxes.NewConfig("1", boxes.Integral, boxes.Linear)
	require.NoError(t, err)
	return cfg
}

func at(seconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, seconds, 0, time.UTC)
}

func Test_ValidateSymbol(t *testing.T) {
	require.NoError(t, ValidateSymbol("BTC-USD"))
	require.Error(t, ValidateSymbol(""))
	require.Error(t, ValidateSymbol("BTCUSD"))
	require.Error(t, ValidateSymbol("BTC-"))
	require.ErrorIs(t, ValidateSymbol("BTC-"), ErrInvalidSymbol)
}

func Test_Registry_RegisterStartsIngestorAndFeedsChart(t *testing.T) {
	r := NewRegistry(nil)
	src := &sliceSource{obs: []feed.Observation{
		{Time: at(0), Price: pfdecimal.MustFromString("10")},
		{Time: at(1), Price: pfdecimal.MustFromString("11")},
		{Time: at(2), Price: pfdecimal.MustFromString("12")},
	}}

	entry, err := r.Register("BTC-USD", mustBoxes(t), 3, src)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return entry.Chart.CurrentColumn.Top.String() == "12"
	}, time.Second, time.Millisecond)

	require.NoError(t, r.Unregister("BTC-USD"))
}

func Test_Registry_RejectsDuplicateSymbol(t *testing.T) {
	r := NewRegistry(nil)
	src := &sliceSource{}

	_, err := r.Register("BTC-USD", mustBoxes(t), 3, src)
	require.NoError(t, err)

	_, err = r.Register("BTC-USD", mustBoxes(t), 3, &sliceSource{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func Test_Registry_RejectsInvalidSymbol(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Register("BTCUSD", mustBoxes(t), 3, &sliceSource{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

func Test_Registry_LookupUnknownSymbol(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Lookup("BTC-USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func Test_Registry_UnregisterUnknownSymbol(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Unregister("BTC-USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func Test_Registry_PublishesUpdatesThroughBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	require.NoError(t, b.Start(context.Background()))

	sub, err := b.Subscribe([]string{"BTC-USD"})
	require.NoError(t, err)

	r := NewRegistry(b)
	src := &sliceSource{obs: []feed.Observation{
		{Time: at(0), Price: pfdecimal.MustFromString("10")},
		{Time: at(1), Price: pfdecimal.MustFromString("11")},
	}}

	_, err = r.Register("BTC-USD", mustBoxes(t), 3, src)
	require.NoError(t, err)

	select {
	case update := <-sub.Updates():
		assert.Equal(t, "BTC-USD", update.Symbol)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}
