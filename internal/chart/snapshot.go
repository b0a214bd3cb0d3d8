package chart

import (
	"errors"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/column"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// ErrMalformedSnapshot is returned when a Chart snapshot carries a
// structural or enum-value violation.
var ErrMalformedSnapshot = errors.New("malformed chart snapshot")

// Snapshot is the serialized, round-trippable form of a Chart.
type Snapshot struct {
	Symbol          string            `json:"symbol"`
	Boxes           boxes.Snapshot    `json:"boxes"`
	FirstDate       int64             `json:"first_date"`
	LastChangeDate  int64             `json:"last_change_date"`
	LastCheckDate   int64             `json:"last_check_date"`
	YMin            string            `json:"y_min"`
	YMax            string            `json:"y_max"`
	CurrentDirection string           `json:"current_direction"`
	Columns         []column.Snapshot `json:"columns"`
	CurrentColumn   column.Snapshot   `json:"current_column"`
}

// ToSnapshot serializes c to its snapshot form.
func (c Chart) ToSnapshot() Snapshot {
	columns := make([]column.Snapshot, len(c.Columns))
	for i, col := range c.Columns {
		columns[i] = col.ToSnapshot()
	}

	return Snapshot{
		Symbol:           c.Symbol,
		Boxes:            c.Boxes.ToSnapshot(),
		FirstDate:        c.FirstDate.UnixNano(),
		LastChangeDate:   c.LastChangeDate.UnixNano(),
		LastCheckDate:    c.LastCheckedDate.UnixNano(),
		YMin:             c.YMin.String(),
		YMax:             c.YMax.String(),
		CurrentDirection: c.CurrentDirection.String(),
		Columns:          columns,
		CurrentColumn:    c.CurrentColumn.ToSnapshot(),
	}
}

// FromSnapshot reconstructs a Chart from its snapshot form.
func FromSnapshot(s Snapshot) (Chart, error) {
	b, err := boxes.FromSnapshot(s.Boxes)
	if err != nil {
		return Chart{}, fmt.Errorf("%w: boxes: %v", ErrMalformedSnapshot, err)
	}
	direction, err := column.ParseDirection(s.CurrentDirection)
	if err != nil {
		return Chart{}, fmt.Errorf("%w: current_direction: %v", ErrMalformedSnapshot, err)
	}
	yMin, err := pfdecimal.NewFromString(s.YMin)
	if err != nil {
		return Chart{}, fmt.Errorf("%w: y_min: %v", ErrMalformedSnapshot, err)
	}
	yMax, err := pfdecimal.NewFromString(s.YMax)
	if err != nil {
		return Chart{}, fmt.Errorf("%w: y_max: %v", ErrMalformedSnapshot, err)
	}
	currentColumn, err := column.FromSnapshot(s.CurrentColumn)
	if err != nil {
		return Chart{}, fmt.Errorf("%w: current_column: %v", ErrMalformedSnapshot, err)
	}

	columns := make([]column.Column, len(s.Columns))
	for i, cs := range s.Columns {
		col, err := column.FromSnapshot(cs)
		if err != nil {
			return Chart{}, fmt.Errorf("%w: columns[%d]: %v", ErrMalformedSnapshot, i, err)
		}
		columns[i] = col
	}

	return Chart{
		Boxes:            b,
		Symbol:           s.Symbol,
		Columns:          columns,
		CurrentColumn:    currentColumn,
		YMin:             yMin,
		YMax:             yMax,
		FirstDate:        time.Unix(0, s.FirstDate).UTC(),
		LastChangeDate:   time.Unix(0, s.LastChangeDate).UTC(),
		LastCheckedDate:  time.Unix(0, s.LastCheckDate).UTC(),
		CurrentDirection: direction,
	}, nil
}

// MarshalJSON implements json.Marshaler via the Snapshot encoding, using
// goccy/go-json for consistency with the rest of the engine's wire types.
func (c Chart) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(c.ToSnapshot())
}

// UnmarshalJSON implements json.Unmarshaler via the Snapshot decoding.
func (c *Chart) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := gojson.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	decoded, err := FromSnapshot(s)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}
