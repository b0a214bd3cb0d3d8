package feed

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// TextLineSource implements Source over an io.Reader of "timestamp<delim>price"
// lines, one observation per line. It is the streaming, channel-based
// counterpart to chart.LoadData's synchronous parsing: the same line format
// and the same skip-and-log behavior on malformed lines, but feeding a
// pipeline instead of a single Chart directly.
type TextLineSource struct {
	r          io.Reader
	dateFormat string
	delim      byte

	skipped atomic.Int64
}

// NewTextLineSource builds a TextLineSource reading from r, parsing
// timestamps with dateFormat and splitting fields on delim.
func NewTextLineSource(r io.Reader, dateFormat string, delim byte) *TextLineSource {
	return &TextLineSource{r: r, dateFormat: dateFormat, delim: delim}
}

// Skipped returns the number of lines skipped for failing to parse, safe to
// call concurrently with Stream's background goroutine.
func (s *TextLineSource) Skipped() int64 {
	return s.skipped.Load()
}

// Stream scans the underlying reader line by line on a background goroutine,
// closing the returned channel when the reader is exhausted or ctx is
// cancelled.
func (s *TextLineSource) Stream(ctx context.Context) (<-chan Observation, error) {
	out := make(chan Observation, 100)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(s.r)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}

			fields := strings.SplitN(line, string(s.delim), 2)
			if len(fields) != 2 {
				log.Warn().Str("line", line).Msg("feed: skipping malformed observation line: expected two fields")
				s.skipped.Add(1)
				continue
			}

			ts := strings.TrimSpace(fields[0])
			priceField := strings.TrimSpace(fields[1])

			t, err := time.Parse(s.dateFormat, ts)
			if err != nil {
				log.Warn().Str("line", line).Err(err).Msg("feed: skipping malformed observation line: bad timestamp")
				s.skipped.Add(1)
				continue
			}

			price, err := pfdecimal.NewFromString(priceField)
			if err != nil {
				log.Warn().Str("line", line).Err(err).Msg("feed: skipping malformed observation line: bad price")
				s.skipped.Add(1)
				continue
			}

			select {
			case out <- Observation{Time: t, Price: price}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Error().Err(err).Msg("feed: text line source read error")
		}
	}()

	return out, nil
}
