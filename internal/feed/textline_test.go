package feed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, ch <-chan Observation, timeout time.Duration) []Observation {
	t.Helper()
	var out []Observation
	deadline := time.After(timeout)
	for {
		select {
		case obs, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, obs)
		case <-deadline:
			t.Fatal("timed out draining observation channel")
		}
	}
}

func Test_TextLineSource_ParsesAndStreams(t *testing.T) {
	stream := strings.Join([]string{
		"2024-01-01,10",
		"2024-01-02,11",
		"2024-01-03,12",
	}, "\n")

	src := NewTextLineSource(strings.NewReader(stream), "2006-01-02", ',')
	ch, err := src.Stream(context.Background())
	require.NoError(t, err)

	obs := drain(t, ch, time.Second)
	require.Len(t, obs, 3)
	assert.Equal(t, "10", obs[0].Price.String())
	assert.Equal(t, "12", obs[2].Price.String())
	assert.Equal(t, int64(0), src.Skipped())
}

func Test_TextLineSource_SkipsMalformedLines(t *testing.T) {
	stream := strings.Join([]string{
		"2024-01-01,10",
		"garbage",
		"2024-01-02,not-a-price",
		"2024-01-03,11",
	}, "\n")

	src := NewTextLineSource(strings.NewReader(stream), "2006-01-02", ',')
	ch, err := src.Stream(context.Background())
	require.NoError(t, err)

	obs := drain(t, ch, time.Second)
	require.Len(t, obs, 2)
	assert.Equal(t, int64(2), src.Skipped())
}

func Test_TextLineSource_StopsOnContextCancel(t *testing.T) {
	stream := strings.Join([]string{"2024-01-01,10", "2024-01-02,11"}, "\n")

	src := NewTextLineSource(strings.NewReader(stream), "2006-01-02", ',')
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := src.Stream(ctx)
	require.NoError(t, err)
	cancel()

	// Channel must eventually close, with or without delivering buffered items.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel did not close after context cancellation")
		}
	}
}
