/*
Package main implements a command-line Point & Figure charting engine.

It reads a text stream of timestamp/price observations for one symbol,
feeds them through a chart.Chart via an internal/feed.Ingestor, and on
shutdown writes the resulting chart's JSON snapshot to disk.

Usage:

	go run . -symbol=BTC-USD -box-size=1 -reversal-boxes=3 -input=prices.csv -snapshot-out=btc.json
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/feed"
	"github.com/FrithiofJensen/point-figure/internal/registry"
)

var (
	symbol        = flag.String("symbol", "", "Trading symbol, e.g. BTC-USD")
	boxSize       = flag.String("box-size", "1", "Box size, decimal string")
	reversalBoxes = flag.Int("reversal-boxes", 3, "Reversal boxes (>= 1)")
	boxType       = flag.String("box-type", "integral", "Box type: integral | fractional")
	boxScale      = flag.String("box-scale", "linear", "Box scale: linear | percent")
	input         = flag.String("input", "", "Path to a text file of timestamp,price lines (defaults to stdin)")
	dateFormat    = flag.String("date-format", "2006-01-02", "Go time layout for parsing the timestamp field")
	delim         = flag.String("delim", ",", "Single-byte field delimiter")
	snapshotOut   = flag.String("snapshot-out", "", "Path to write the final chart snapshot as JSON")
)

func main() {
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := validateConfig(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := registry.NewRegistry(nil)

	r, closeInput, err := openInput()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open input")
	}
	defer closeInput()

	cfg, err := boxesConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid boxes configuration")
	}

	src := feed.NewTextLineSource(r, *dateFormat, (*delim)[0])

	entry, err := reg.Register(*symbol, cfg, *reversalBoxes, src)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register symbol")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("initiating graceful shutdown")
		cancel()
	}()

	log.Info().
		Str("symbol", *symbol).
		Str("box_size", *boxSize).
		Int("reversal_boxes", *reversalBoxes).
		Str("box_type", *boxType).
		Str("box_scale", *boxScale).
		Msg("pfchart starting")

	<-ctx.Done()

	if err := reg.Unregister(*symbol); err != nil {
		log.Error().Err(err).Msg("failed to stop ingestor cleanly")
	}

	if *snapshotOut != "" {
		if err := writeSnapshot(entry); err != nil {
			log.Fatal().Err(err).Msg("failed to write snapshot")
		}
		log.Info().Str("path", *snapshotOut).Msg("wrote chart snapshot")
	}
}

func validateConfig() error {
	if *symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if *reversalBoxes < 1 {
		return fmt.Errorf("reversal-boxes must be >= 1")
	}
	if len(*delim) != 1 {
		return fmt.Errorf("delim must be exactly one byte")
	}
	switch *boxType {
	case "integral", "fractional":
	default:
		return fmt.Errorf("box-type must be \"integral\" or \"fractional\", got %q", *boxType)
	}
	switch *boxScale {
	case "linear", "percent":
	default:
		return fmt.Errorf("box-scale must be \"linear\" or \"percent\", got %q", *boxScale)
	}
	return nil
}

func boxesConfig() (boxes.Config, error) {
	bt, err := boxes.ParseType(*boxType)
	if err != nil {
		return boxes.Config{}, err
	}
	bs, err := boxes.ParseScale(*boxScale)
	if err != nil {
		return boxes.Config{}, err
	}
	return boxes.NewConfig(*boxSize, bt, bs)
}

func openInput() (*os.File, func(), error) {
	if *input == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(*input)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeSnapshot(entry *registry.Entry) error {
	data, err := entry.Chart.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(*snapshotOut, data, 0o644)
}
