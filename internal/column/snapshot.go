package column

import (
	"errors"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/FrithiofJensen/point-figure/internal/boxes"
	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// ErrMalformedSnapshot is returned when a Column snapshot carries a
// structural or enum-value violation.
var ErrMalformedSnapshot = errors.New("malformed column snapshot")

// Snapshot is the serialized, round-trippable form of a Column. Every
// field needed to reconstruct the column's Boxes configuration is carried
// redundantly, so a Snapshot never needs a live Boxes reference to decode.
type Snapshot struct {
	StartAt       int64  `json:"start_at"`
	LastEntry     int64  `json:"last_entry"`
	BoxSize       string `json:"box_size"`
	ReversalBoxes int    `json:"reversal_boxes"`
	Top           string `json:"top"`
	Bottom        string `json:"bottom"`
	Direction     string `json:"direction"`
	BoxType       string `json:"box_type"`
	ColumnScale   string `json:"column_scale"`
	HadReversal   bool   `json:"had_reversal"`
}

// ToSnapshot serializes c to its snapshot form.
func (c Column) ToSnapshot() Snapshot {
	return Snapshot{
		StartAt:       c.TimeSpan.First.UnixNano(),
		LastEntry:     c.TimeSpan.Last.UnixNano(),
		BoxSize:       c.boxesRef.BoxSize.String(),
		ReversalBoxes: c.ReversalBoxes,
		Top:           c.Top.String(),
		Bottom:        c.Bottom.String(),
		Direction:     c.Direction.String(),
		BoxType:       c.boxesRef.BoxType.String(),
		ColumnScale:   c.boxesRef.BoxScale.String(),
		HadReversal:   c.HadReversal,
	}
}

// FromSnapshot reconstructs a Column from its snapshot form.
func FromSnapshot(s Snapshot) (Column, error) {
	boxType, err := boxes.ParseType(s.BoxType)
	if err != nil {
		return Column{}, fmt.Errorf("%w: box_type: %v", ErrMalformedSnapshot, err)
	}
	boxScale, err := boxes.ParseScale(s.ColumnScale)
	if err != nil {
		return Column{}, fmt.Errorf("%w: column_scale: %v", ErrMalformedSnapshot, err)
	}
	direction, err := ParseDirection(s.Direction)
	if err != nil {
		return Column{}, fmt.Errorf("%w: direction: %v", ErrMalformedSnapshot, err)
	}

	boxSize, err := pfdecimal.NewFromString(s.BoxSize)
	if err != nil {
		return Column{}, fmt.Errorf("%w: box_size: %v", ErrMalformedSnapshot, err)
	}
	top, err := pfdecimal.NewFromString(s.Top)
	if err != nil {
		return Column{}, fmt.Errorf("%w: top: %v", ErrMalformedSnapshot, err)
	}
	bottom, err := pfdecimal.NewFromString(s.Bottom)
	if err != nil {
		return Column{}, fmt.Errorf("%w: bottom: %v", ErrMalformedSnapshot, err)
	}

	b, err := boxes.NewConfigFromDecimal(boxSize, boxType, boxScale)
	if err != nil {
		return Column{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	return Column{
		boxesRef:      b,
		ReversalBoxes: s.ReversalBoxes,
		Direction:     direction,
		Top:           top,
		Bottom:        bottom,
		HadReversal:   s.HadReversal,
		TimeSpan: TimeSpan{
			First: time.Unix(0, s.StartAt).UTC(),
			Last:  time.Unix(0, s.LastEntry).UTC(),
		},
	}, nil
}

// MarshalJSON implements json.Marshaler via the Snapshot encoding, using
// goccy/go-json for consistency with the rest of the engine's wire types.
func (c Column) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(c.ToSnapshot())
}

// UnmarshalJSON implements json.Unmarshaler via the Snapshot decoding.
func (c *Column) UnmarshalJSON(data []byte) error {
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
