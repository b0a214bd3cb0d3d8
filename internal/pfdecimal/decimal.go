// Package pfdecimal provides the exact fixed-precision decimal type used
// throughout the Point & Figure engine.
//
// Binary floating-point is never used for box-boundary arithmetic: equality
// on box edges and idempotent snapshot round-trips both depend on exact
// decimal representation. Decimal wraps github.com/shopspring/decimal, the
// same library this module's ambient data types already depend on, and adds
// the handful of operations the column state machine requires that the
// underlying library does not expose directly (truncation towards zero,
// non-negative integer exponentiation without a floating-point detour,
// round-half-even rescaling expressed in terms of a decimal exponent).
package pfdecimal

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrMalformedDecimal is returned when a string cannot be parsed as a decimal.
var ErrMalformedDecimal = errors.New("malformed decimal")

// ErrDomain is returned by operations with no valid result, such as division
// by zero. It signals a programming error in the caller, not a malformed
// input, and is not expected to be recovered from.
var ErrDomain = errors.New("decimal domain error")

// Decimal is an exact decimal value with a known (if not externally fixed)
// power-of-ten exponent.
type Decimal struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Decimal{d: decimal.Zero}

// NegOne is the sentinel value PF_Column uses to mark "no price seen yet."
var NegOne = Decimal{d: decimal.NewFromInt(-1)}

// NewFromInt builds a Decimal from an integer.
func NewFromInt(i int64) Decimal {
	return Decimal{d: decimal.NewFromInt(i)}
}

// NewFromFloat builds a Decimal from a float64. Intended for tests and for
// callers constructing literal configuration values; the column state
// machine itself never produces a Decimal this way.
func NewFromFloat(f float64) Decimal {
	return Decimal{d: decimal.NewFromFloat(f)}
}

// NewFromString parses s as a decimal. Returns ErrMalformedDecimal (wrapped)
// on failure.
func NewFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q: %v", ErrMalformedDecimal, s, err)
	}
	return Decimal{d: d}, nil
}

// MustFromString parses s as a decimal and panics on failure. Intended for
// literal configuration constants, not for parsing external input.
func MustFromString(s string) Decimal {
	d, err := NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Add returns a + b.
func (a Decimal) Add(b Decimal) Decimal { return Decimal{d: a.d.Add(b.d)} }

// Sub returns a - b.
func (a Decimal) Sub(b Decimal) Decimal { return Decimal{d: a.d.Sub(b.d)} }

// Mul returns a * b.
func (a Decimal) Mul(b Decimal) Decimal { return Decimal{d: a.d.Mul(b.d)} }

// Div returns a / b. Returns ErrDomain if b is zero.
func (a Decimal) Div(b Decimal) (Decimal, error) {
	if b.d.IsZero() {
		return Decimal{}, fmt.Errorf("%w: division by zero", ErrDomain)
	}
	return Decimal{d: a.d.Div(b.d)}, nil
}

// Neg returns -a.
func (a Decimal) Neg() Decimal { return Decimal{d: a.d.Neg()} }

// Abs returns the absolute value of a.
func (a Decimal) Abs() Decimal { return Decimal{d: a.d.Abs()} }

// TruncateInt truncates a towards zero to an integer-valued Decimal, e.g.
// 50.9 -> 50, -50.9 -> -50.
func (a Decimal) TruncateInt() Decimal { return Decimal{d: a.d.Truncate(0)} }

// IntPart returns a truncated towards zero as an int64. Used for "how many
// boxes" style counts where the caller already knows the value fits.
func (a Decimal) IntPart() int64 { return a.d.IntPart() }

// PowInt raises a to the non-negative integer power n using exact repeated
// multiplication (exponentiation by squaring), never a floating-point log/exp
// detour. Panics if n is negative, matching the domain the spec defines
// ("a^n for non-negative integer n").
func (a Decimal) PowInt(n int) Decimal {
	if n < 0 {
		panic(fmt.Sprintf("pfdecimal: PowInt requires a non-negative exponent, got %d", n))
	}
	result := decimal.NewFromInt(1)
	base := a.d
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return Decimal{d: result}
}

// Mod returns a - TruncateInt(a/b)*b, per the spec's definition (distinct
// from a floored or Euclidean modulo). Returns ErrDomain if b is zero.
func (a Decimal) Mod(b Decimal) (Decimal, error) {
	if b.d.IsZero() {
		return Decimal{}, fmt.Errorf("%w: modulo by zero", ErrDomain)
	}
	quotient := Decimal{d: a.d.Div(b.d)}.TruncateInt()
	return a.Sub(quotient.Mul(b)), nil
}

// Rescale rounds a to a representation with the given decimal exponent using
// round-half-even (banker's rounding). exponent follows the usual power-of-ten
// convention: -2 means two digits after the decimal point.
func (a Decimal) Rescale(exponent int32) Decimal {
	return Decimal{d: a.d.RoundBank(-exponent)}
}

// Exponent returns the decimal exponent of a's stored representation.
func (a Decimal) Exponent() int32 { return a.d.Exponent() }

// Cmp returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Decimal) Cmp(b Decimal) int { return a.d.Cmp(b.d) }

// Equal reports whether a and b represent the same value.
func (a Decimal) Equal(b Decimal) bool { return a.d.Equal(b.d) }

// GreaterThan reports whether a > b.
func (a Decimal) GreaterThan(b Decimal) bool { return a.d.GreaterThan(b.d) }

// GreaterThanOrEqual reports whether a >= b.
func (a Decimal) GreaterThanOrEqual(b Decimal) bool { return a.d.GreaterThanOrEqual(b.d) }

// LessThan reports whether a < b.
func (a Decimal) LessThan(b Decimal) bool { return a.d.LessThan(b.d) }

// LessThanOrEqual reports whether a <= b.
func (a Decimal) LessThanOrEqual(b Decimal) bool { return a.d.LessThanOrEqual(b.d) }

// IsZero reports whether a is zero.
func (a Decimal) IsZero() bool { return a.d.IsZero() }

// String returns the canonical, round-tripping string form of a.
func (a Decimal) String() string { return a.d.String() }

// Max returns the greater of a and b.
func Max(a, b Decimal) Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
