package registry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/chart"
	"github.com/FrithiofJensen/point-figure/internal/column"
)

// Update reports that one symbol's Chart changed state. It carries the
// status of the observation that caused the change and a fresh snapshot of
// the Chart as it stood immediately after.
type Update struct {
	Symbol   string
	Status   column.Status
	Snapshot chart.Snapshot
}

// subscriber is a single consumer's subscription to a set of symbols.
type subscriber struct {
	id      int64
	ch      chan Update
	symbols map[string]struct{}
}

// Broadcaster fans Updates out to subscribers using the same actor-model
// pattern as the teacher's service.Dispatcher: a single owning goroutine
// holds the subscribers map (no mutex needed), subscription bookkeeping
// flows through buffered channels, and a slow subscriber has its oldest
// buffered Update dropped rather than blocking the publisher.
type Broadcaster struct {
	subscribers      map[int64]*subscriber
	subscriptionCh   chan *subscriber
	unsubscriptionCh chan *subscriber
	updateCh         chan Update
	started          atomic.Bool
	randIDGen        *rand.Rand
}

// NewBroadcaster builds an unstarted Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers:      make(map[int64]*subscriber),
		subscriptionCh:   make(chan *subscriber, 10),
		unsubscriptionCh: make(chan *subscriber, 10),
		updateCh:         make(chan Update, 1000),
		randIDGen:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Subscription is the handle returned to a caller of Subscribe; it exposes
// the read-only channel of Updates matching the subscribed symbols.
type Subscription struct {
	sub *subscriber
	b   *Broadcaster
}

// Updates returns the channel Updates for subscribed symbols are delivered
// on. It is closed when the Subscription is cancelled or the Broadcaster
// stops.
func (s *Subscription) Updates() <-chan Update { return s.sub.ch }

// Cancel ends the subscription.
func (s *Subscription) Cancel() error { return s.b.unsubscribe(s.sub) }

// Start launches the dispatch goroutine. It returns an error if already
// started.
func (b *Broadcaster) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("broadcaster already started")
	}

	go func() {
		defer func() {
			for _, sub := range b.subscribers {
				close(sub.ch)
			}
			b.subscribers = make(map[int64]*subscriber)
			// Subscriptions still queued when the context ends never reached
			// the map; close them too so every Updates channel is closed.
			for {
				select {
				case sub := <-b.subscriptionCh:
					close(sub.ch)
				default:
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("registry: broadcaster stopped")
				return
			case sub := <-b.subscriptionCh:
				b.subscribers[sub.id] = sub
			case sub := <-b.unsubscriptionCh:
				if _, ok := b.subscribers[sub.id]; ok {
					delete(b.subscribers, sub.id)
					close(sub.ch)
				}
			case update := <-b.updateCh:
				b.dispatch(update)
			}
		}
	}()

	return nil
}

// Subscribe registers interest in Updates for the given symbols.
func (b *Broadcaster) Subscribe(symbols []string) (*Subscription, error) {
	if !b.started.Load() {
		return nil, errors.New("broadcaster not started")
	}
	if len(symbols) == 0 {
		return nil, errors.New("at least one symbol is required")
	}

	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}

	sub := &subscriber{
		id:      b.randIDGen.Int63(),
		ch:      make(chan Update, 100),
		symbols: set,
	}

	select {
	case b.subscriptionCh <- sub:
	default:
		return nil, fmt.Errorf("subscription channel is full")
	}

	return &Subscription{sub: sub, b: b}, nil
}

func (b *Broadcaster) unsubscribe(sub *subscriber) error {
	select {
	case b.unsubscriptionCh <- sub:
		return nil
	default:
		return fmt.Errorf("unsubscription channel is full")
	}
}

// Publish queues an Update for dispatch. It never blocks the caller past the
// buffered channel's capacity; if that capacity is exhausted the update is
// dropped and logged, since updates are inherently stale by the time the
// next one arrives.
func (b *Broadcaster) Publish(update Update) {
	select {
	case b.updateCh <- update:
	default:
		log.Warn().Str("symbol", update.Symbol).Msg("registry: broadcaster update queue full, dropping update")
	}
}

// dispatch delivers update to every subscriber interested in its symbol,
// dropping the oldest buffered update for any subscriber whose channel is
// full rather than blocking the dispatch goroutine.
func (b *Broadcaster) dispatch(update Update) {
	for _, sub := range b.subscribers {
		if _, ok := sub.symbols[update.Symbol]; !ok {
			continue
		}
		select {
		case sub.ch <- update:
		default:
			log.Info().Int64("subscriber", sub.id).Msg("registry: subscriber too slow, dropping oldest buffered update")
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- update:
			default:
			}
		}
	}
}
