// Package ohlcbar aggregates a stream of price observations into daily (or
// otherwise bucketed) OHLC bars — the historical series compute_atr needs
// before a Chart's box_size can be sized.
//
// Adapted from the teacher's internal/candles aggregator, but with no
// ticker: a bar is published when an observation crosses its bucket boundary
// or the input closes. Observations are bucketed by time instead of trades
// by trading pair, and tracking Open/High/Low/Close on
// pfdecimal.Decimal instead of shopspring/decimal, with no Volume field since
// the P&F domain has no notion of traded size.
package ohlcbar

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/chart"
	"github.com/FrithiofJensen/point-figure/internal/feed"
)

// Aggregator buckets incoming Observations into chart.OHLCRow bars of a
// fixed duration (typically 24h), publishing each completed bar when its
// bucket closes.
type Aggregator struct {
	bucket time.Duration

	current    chart.OHLCRow
	bucketOpen bool
}

// NewAggregator builds an Aggregator bucketing observations into windows of
// the given duration.
func NewAggregator(bucket time.Duration) *Aggregator {
	return &Aggregator{bucket: bucket}
}

// Run consumes obs until it closes or ctx is cancelled, emitting one
// completed chart.OHLCRow per bucket boundary on the returned channel. The
// returned channel is closed when Run's goroutine exits.
func (a *Aggregator) Run(ctx context.Context, obs <-chan feed.Observation) <-chan chart.OHLCRow {
	out := make(chan chart.OHLCRow, 100)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("ohlcbar: aggregator stopped")
				return
			case o, ok := <-obs:
				if !ok {
					a.flush(out)
					return
				}
				if a.bucketClosed(o.Time) {
					a.flush(out)
				}
				a.update(o)
			}
		}
	}()

	return out
}

// bucketClosed reports whether t has crossed past the current bucket's
// window, given the bucket was opened at current.Date.
func (a *Aggregator) bucketClosed(t time.Time) bool {
	if !a.bucketOpen {
		return false
	}
	return t.Sub(a.current.Date) >= a.bucket
}

// update folds one Observation into the in-progress bar, opening a new
// bucket on the first observation after a flush.
func (a *Aggregator) update(o feed.Observation) {
	if !a.bucketOpen {
		a.current = chart.OHLCRow{
			Date:  o.Time,
			Open:  o.Price,
			High:  o.Price,
			Low:   o.Price,
			Close: o.Price,
		}
		a.bucketOpen = true
		return
	}

	if o.Price.GreaterThan(a.current.High) {
		a.current.High = o.Price
	}
	if o.Price.LessThan(a.current.Low) {
		a.current.Low = o.Price
	}
	a.current.Close = o.Price
}

// flush publishes the in-progress bar, if any, and resets for the next
// bucket.
func (a *Aggregator) flush(out chan<- chart.OHLCRow) {
	if !a.bucketOpen {
		return
	}
	out <- a.current
	a.current = chart.OHLCRow{}
	a.bucketOpen = false
}
