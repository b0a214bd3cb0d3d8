// Package boxes holds the immutable quantization configuration a Point &
// Figure chart is built from: box size, box type, and box scale. It is the
// pure-configuration leaf component of the engine — it never mutates, and a
// Column never owns one, only borrows it by reference.
package boxes

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/FrithiofJensen/point-figure/internal/pfdecimal"
)

// Type selects whether a linear-scale box truncates prices towards zero to
// an integer before quantizing. Meaningless for percent scale, which always
// treats prices as fractional.
type Type int

const (
	// Integral truncates a price to an integer before applying box_size.
	Integral Type = iota
	// Fractional applies box_size directly to the raw price.
	Fractional
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Integral:
		return "integral"
	case Fractional:
		return "fractional"
	default:
		return "unknown"
	}
}

// ParseType parses the snapshot string form of a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "integral":
		return Integral, nil
	case "fractional":
		return Fractional, nil
	default:
		return 0, fmt.Errorf("%w: box_type %q must be \"integral\" or \"fractional\"", ErrMalformedEnum, s)
	}
}

// Scale selects linear (additive) or percent (multiplicative) box boundaries.
type Scale int

const (
	// Linear boxes advance by a fixed additive amount, box_size.
	Linear Scale = iota
	// Percent boxes advance by a fixed multiplicative factor, 1 + box_size.
	Percent
)

// String implements fmt.Stringer.
func (s Scale) String() string {
	switch s {
	case Linear:
		return "linear"
	case Percent:
		return "percent"
	default:
		return "unknown"
	}
}

// ParseScale parses the snapshot string form of a Scale.
func ParseScale(s string) (Scale, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "percent":
		return Percent, nil
	default:
		return 0, fmt.Errorf("%w: column_scale %q must be \"linear\" or \"percent\"", ErrMalformedEnum, s)
	}
}

// ErrMalformedEnum is returned when a string does not match a known enum
// member while parsing a snapshot.
var ErrMalformedEnum = errors.New("malformed enum value")

// configInput is the validated shape of the arguments NewConfig accepts.
// go-playground/validator checks these the same way the teacher's
// exchange.ExchangeConfig validates connector settings before a connector
// is built.
type configInput struct {
	BoxSize string `validate:"required,numeric"`
}

var validate = validator.New()

// Config is the immutable configuration bundle shared by every Column in a
// Chart: box size, box type and box scale. reversal_boxes is deliberately
// not part of Config — it is a per-Column parameter in the data model (see
// SPEC_FULL.md §3), so the percent-scale reversal factors that depend on it
// are computed on demand rather than baked in at construction.
type Config struct {
	BoxSize  pfdecimal.Decimal
	BoxType  Type
	BoxScale Scale

	// percentExponent, upFactor and downFactor are only meaningful (and
	// only populated) when BoxScale == Percent.
	percentExponent int32
	upFactor        pfdecimal.Decimal
	downFactor      pfdecimal.Decimal
}

// NewConfig validates and builds a Config. boxSize must be a positive
// decimal string.
func NewConfig(boxSize string, boxType Type, boxScale Scale) (Config, error) {
	if err := validate.Struct(configInput{BoxSize: boxSize}); err != nil {
		return Config{}, fmt.Errorf("invalid boxes configuration: %w", err)
	}

	size, err := pfdecimal.NewFromString(boxSize)
	if err != nil {
		return Config{}, err
	}
	if !size.GreaterThan(pfdecimal.Zero) {
		return Config{}, fmt.Errorf("invalid boxes configuration: box_size must be > 0, got %s", boxSize)
	}

	return newConfigFromDecimal(size, boxType, boxScale), nil
}

// NewConfigFromDecimal is the decimal-typed counterpart of NewConfig, used
// when the caller already holds a validated pfdecimal.Decimal (e.g. when
// reconstructing a Config from a Chart or Column snapshot).
func NewConfigFromDecimal(boxSize pfdecimal.Decimal, boxType Type, boxScale Scale) (Config, error) {
	if !boxSize.GreaterThan(pfdecimal.Zero) {
		return Config{}, fmt.Errorf("invalid boxes configuration: box_size must be > 0, got %s", boxSize.String())
	}
	return newConfigFromDecimal(boxSize, boxType, boxScale), nil
}

func newConfigFromDecimal(boxSize pfdecimal.Decimal, boxType Type, boxScale Scale) Config {
	cfg := Config{
		BoxSize:  boxSize,
		BoxType:  boxType,
		BoxScale: boxScale,
	}

	if boxScale == Percent {
		one := pfdecimal.NewFromInt(1)
		cfg.percentExponent = boxSize.Exponent() - 1
		cfg.upFactor = one.Add(boxSize)
		// down_factor is the reciprocal of up_factor, rescaled to
		// percent_exponent, so that top * down_factor^k == top / up_factor^k:
		// a column that travels up by k boxes and reverses travels back down
		// by the same k boxes. See DESIGN.md for why this differs from the
		// source's literal box_size/up_factor formula.
		downRaw, err := one.Div(cfg.upFactor)
		if err != nil {
			// up_factor = 1 + box_size with box_size > 0 is always > 0.
			panic(fmt.Sprintf("boxes: unreachable division by zero computing down_factor: %v", err))
		}
		cfg.downFactor = downRaw.Rescale(cfg.percentExponent)
	}

	return cfg
}

// UpFactor returns 1 + box_size. Only meaningful for percent scale.
func (c Config) UpFactor() pfdecimal.Decimal { return c.upFactor }

// DownFactor returns 1 / up_factor, rescaled to PercentExponent, the
// multiplicative step a percent-scale column's bottom advances by on a
// downward move. Only meaningful for percent scale.
func (c Config) DownFactor() pfdecimal.Decimal { return c.downFactor }

// ReversalUpFactor returns UpFactor^reversalBoxes, rescaled to
// PercentExponent. Only meaningful for percent scale.
func (c Config) ReversalUpFactor(reversalBoxes int) pfdecimal.Decimal {
	return c.upFactor.PowInt(reversalBoxes).Rescale(c.percentExponent)
}

// ReversalDownFactor returns DownFactor^reversalBoxes, rescaled to
// PercentExponent. Only meaningful for percent scale.
func (c Config) ReversalDownFactor(reversalBoxes int) pfdecimal.Decimal {
	return c.downFactor.PowInt(reversalBoxes).Rescale(c.percentExponent)
}

// PercentExponent returns exponent(box_size) - 1, the decimal exponent every
// percent-scale boundary is rescaled to after each multiplicative step.
// Only meaningful for percent scale.
func (c Config) PercentExponent() int32 { return c.percentExponent }

// RoundDownToBox rounds v down to the nearest box boundary.
//
// For linear scale this is v_int - mod(v_int, box_size), where v_int is v
// truncated to an integer when BoxType is Integral, or v itself when
// Fractional. Note this differs from the source implementation's literal
// formula mod(v_int, box_size) * box_size, which is only correct when
// box_size == 1; see DESIGN.md for the resolution of this open question.
//
// For percent scale, v is returned unchanged: percent columns seed their
// top/bottom directly from the raw observed price.
func (c Config) RoundDownToBox(v pfdecimal.Decimal) (pfdecimal.Decimal, error) {
	if c.BoxScale == Percent {
		return v, nil
	}

	vInt := v
	if c.BoxType == Integral {
		vInt = v.TruncateInt()
	}

	remainder, err := vInt.Mod(c.BoxSize)
	if err != nil {
		return pfdecimal.Decimal{}, err
	}
	return vInt.Sub(remainder), nil
}

// Equal reports whether two Configs describe the same box quantization.
// Derived percent factors are not compared directly since they are
// deterministic functions of BoxSize and BoxScale.
func (c Config) Equal(other Config) bool {
	return c.BoxSize.Equal(other.BoxSize) &&
		c.BoxType == other.BoxType &&
		c.BoxScale == other.BoxScale
}

// Snapshot is the serialized, round-trippable form of a Config.
type Snapshot struct {
	BoxSize  string `json:"box_size"`
	BoxType  string `json:"box_type"`
	BoxScale string `json:"box_scale"`
}

// ToSnapshot serializes c to its snapshot form.
func (c Config) ToSnapshot() Snapshot {
	return Snapshot{
		BoxSize:  c.BoxSize.String(),
		BoxType:  c.BoxType.String(),
		BoxScale: c.BoxScale.String(),
	}
}

// FromSnapshot reconstructs a Config from its snapshot form.
func FromSnapshot(s Snapshot) (Config, error) {
	boxType, err := ParseType(s.BoxType)
	if err != nil {
		return Config{}, err
	}
	boxScale, err := ParseScale(s.BoxScale)
	if err != nil {
		return Config{}, err
	}
	boxSize, err := pfdecimal.NewFromString(s.BoxSize)
	if err != nil {
		return Config{}, err
	}
	return NewConfigFromDecimal(boxSize, boxType, boxScale)
}
