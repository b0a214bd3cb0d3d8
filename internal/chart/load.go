package chart

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// LoadResult reports how many lines load_data consumed successfully and how
// many it skipped, satisfying the "externally observable skipped counter"
// the ingestor contract permits (see SPEC_FULL.md §6.2).
type LoadResult struct {
	Accepted int
	Skipped  int
}

// LoadData consumes a text stream of one observation per line — timestamp
// and price separated by delim, surrounding whitespace tolerated — and
// calls AddValue for each. Malformed lines are skipped and logged, never
// failing the whole load. On trailing EOF, YMin/YMax are finalized from the
// current column's live bounds, matching the source's end-of-file handling.
func (c *Chart) LoadData(r io.Reader, dateFormat string, delim byte) (LoadResult, error) {
	var result LoadResult

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.SplitN(line, string(delim), 2)
		if len(fields) != 2 {
			log.Warn().Str("line", line).Msg("chart: skipping malformed observation line: expected two fields")
			result.Skipped++
			continue
		}

		ts := strings.TrimSpace(fields[0])
		priceField := strings.TrimSpace(fields[1])

		t, err := time.Parse(dateFormat, ts)
		if err != nil {
			log.Warn().Str("line", line).Err(err).Msg("chart: skipping malformed observation line: bad timestamp")
			result.Skipped++
			continue
		}

		price, err := pfdecimal.NewFromString(priceField)
		if err != nil {
			log.Warn().Str("line", line).Err(err).Msg("chart: skipping malformed observation line: bad price")
			result.Skipped++
			continue
		}

		if _, err := c.AddValue(price, t); err != nil {
			return result, err
		}
		result.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}

	c.updateExtrema()
	c.CurrentDirection = c.CurrentColumn.Direction

	return result, nil
}
