// Package registry owns one chart.Chart plus one feed.Ingestor per symbol
// and fans out chart-state-changed events to subscribers, giving spec.md
// §5's "multiple Charts (one per symbol) can be updated concurrently without
// coordination" guarantee a concrete home: each entry's ingestor goroutine
// is independent, and no lock is shared across symbols.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/chart"
	"github.com/FrithiofJensen/point-figure/internal/column"
	"github.com/FrithiofJensen/point-figure/internal/feed"
)

// ErrUnknownSymbol is returned when a lookup or unregister targets a symbol
// that was never registered.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ErrAlreadyRegistered is returned by Register when the symbol is already
// tracked.
var ErrAlreadyRegistered = errors.New("symbol already registered")

// ErrInvalidSymbol is returned when a symbol fails validation.
var ErrInvalidSymbol = errors.New("invalid symbol")

// ValidateSymbol checks that symbol is a non-empty "BASE-QUOTE" pair,
// case-insensitively. Adapted from the teacher's utils.ValidateSymbol, with
// the quote-asset allowlist dropped — this domain has no notion of a
// settlement currency, only instrument identifiers — leaving the format
// check that genuinely generalizes.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol cannot be empty", ErrInvalidSymbol)
	}
	parts := strings.Split(symbol, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%w: expected BASE-QUOTE, got %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// Entry bundles one symbol's Chart and the Ingestor feeding it.
type Entry struct {
	Symbol   string
	Chart    *chart.Chart
	Ingestor *feed.Ingestor
}

// Registry owns one Entry per symbol. All registry-level bookkeeping
// (the symbol->Entry map) is guarded by a mutex; each Entry's Chart is
// mutated only by its own Ingestor's single consumer goroutine, so no lock
// is needed across symbols, only around the map itself.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]*Entry
	broadcaster *Broadcaster
}

// NewRegistry builds an empty Registry publishing chart-state-changed events
// through broadcaster, which may be nil if no subscriber plumbing is needed.
func NewRegistry(broadcaster *Broadcaster) *Registry {
	return &Registry{
		entries:     make(map[string]*Entry),
		broadcaster: broadcaster,
	}
}

// Register validates symbol, builds a fresh Chart for it from cfg, and
// starts an Ingestor consuming source into that Chart. The Ingestor's
// OnUpdate hook publishes an Update to the Registry's Broadcaster (if any)
// after every processed observation.
func (r *Registry) Register(symbol string, cfg boxes.Config, reversalBoxes int, source feed.Source) (*Entry, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[symbol]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, symbol)
	}

	c := chart.New(symbol, cfg, reversalBoxes)
	entry := &Entry{Symbol: symbol, Chart: &c}

	entry.Ingestor = feed.NewIngestor(source, entry.Chart, func(_ feed.Observation, status column.Status, err error) {
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("registry: fatal ingestor error")
			return
		}
		if r.broadcaster != nil {
			r.broadcaster.Publish(Update{
				Symbol:   symbol,
				Status:   status,
				Snapshot: entry.Chart.ToSnapshot(),
			})
		}
	})

	if err := entry.Ingestor.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to start ingestor for %s: %w", symbol, err)
	}

	r.entries[symbol] = entry
	return entry, nil
}

// Unregister stops the symbol's Ingestor and removes it from the Registry.
func (r *Registry) Unregister(symbol string) error {
	r.mu.Lock()
	entry, exists := r.entries[symbol]
	if exists {
		delete(r.entries, symbol)
	}
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return entry.Ingestor.Stop()
}

// Lookup returns the Entry registered for symbol.
func (r *Registry) Lookup(symbol string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[symbol]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return entry, nil
}

// Symbols returns the currently registered symbols, in no particular order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entries))
	for s := range r.entries {
		out = append(out, s)
	}
	return out
}
