package feed

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/chart"
	"github.com/FrithiofJensen/point-figure/internal/column"
)

// OnUpdate is called once per processed Observation, after AddValue returns.
// err is non-nil only for a DomainError out of the column state machine,
// which is fatal for that chart.
type OnUpdate func(obs Observation, status column.Status, err error)

// Ingestor is the bounded-FIFO, single-consumer actor that serializes
// Observations from a Source onto one chart.Chart. The Source's channel
// buffer is the "bounded FIFO guarded by a mutex" spec.md §5 describes — a
// Go channel already provides that guarantee, so the consumer goroutine
// draining it is the only synchronization the ingestor needs to add.
//
// Lifecycle follows the teacher's CandleService.Start/Stop: an atomic flag
// guards against double-start/double-stop, and Stop cancels the consumer's
// context and waits for the consumer goroutine to exit.
type Ingestor struct {
	source   Source
	chart    *chart.Chart
	onUpdate OnUpdate

	started atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewIngestor builds an Ingestor feeding c from source. onUpdate may be nil.
func NewIngestor(source Source, c *chart.Chart, onUpdate OnUpdate) *Ingestor {
	return &Ingestor{source: source, chart: c, onUpdate: onUpdate}
}

// Start begins streaming from the Source and consuming into the Chart. It
// returns once the consumer goroutine has been launched; consumption itself
// continues in the background until Stop is called or the Source's stream
// ends on its own.
func (ig *Ingestor) Start(ctx context.Context) error {
	if !ig.started.CompareAndSwap(false, true) {
		return errors.New("ingestor already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	ig.cancel = cancel
	ig.done = make(chan struct{})

	obsCh, err := ig.source.Stream(ctx)
	if err != nil {
		cancel()
		ig.started.Store(false)
		return err
	}

	go func() {
		defer close(ig.done)
		for {
			select {
			case <-ctx.Done():
				return
			case obs, ok := <-obsCh:
				if !ok {
					return
				}
				status, err := ig.chart.AddValue(obs.Price, obs.Time)
				if err != nil {
					log.Error().Err(err).Str("symbol", ig.chart.Symbol).Msg("feed: fatal error adding value to chart")
				}
				if ig.onUpdate != nil {
					ig.onUpdate(obs, status, err)
				}
				if err != nil {
					return
				}
			}
		}
	}()

	return nil
}

// Stop cancels the consumer and waits for it to exit. Observations still
// buffered in the Source's channel at that point are not fed to the Chart.
func (ig *Ingestor) Stop() error {
	if !ig.started.CompareAndSwap(true, false) {
		return errors.New("ingestor not started")
	}

	ig.cancel()
	<-ig.done
	return nil
}
