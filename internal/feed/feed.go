// Package feed supplies pluggable sources of price observations and the
// bounded-queue ingestor that serializes them onto a chart.Chart.
//
// A Source is the Go analogue of the teacher repo's ExchangeConnector: the
// core algorithm never depends on how an Observation was acquired, only that
// it arrives in order on a channel.
package feed

import (
	"context"
	"time"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// Observation is one (price, timestamp) pair ready to be fed to a Chart.
type Observation struct {
	Time  time.Time
	Price pfdecimal.Decimal
}

// Source produces a stream of Observations. Implementations own their own
// acquisition protocol (file, WebSocket, HTTP poll) and close the returned
// channel when the stream ends, whether normally or due to ctx cancellation.
type Source interface {
	Stream(ctx context.Context) (<-chan Observation, error)
}
