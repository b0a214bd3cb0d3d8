package pfdecimal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "integer", input: "50", wantErr: false},
		{name: "fractional", input: "50.125", wantErr: false},
		{name: "negative", input: "-10.5", wantErr: false},
		{name: "malformed", input: "not-a-number", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedDecimal))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, d.String())
		})
	}
}

func Test_ArithmeticExact(t *testing.T) {
	a := MustFromString("10.5")
	b := MustFromString("3.25")

	assert.Equal(t, "13.75", a.Add(b).String())
	assert.Equal(t, "7.25", a.Sub(b).String())
	assert.Equal(t, "34.125", a.Mul(b).String())
}

func Test_DivByZero(t *testing.T) {
	a := MustFromString("10")
	_, err := a.Div(Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDomain))
}

func Test_ModByZero(t *testing.T) {
	a := MustFromString("10")
	_, err := a.Mod(Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDomain))
}

func Test_TruncateInt(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"50.9", "50"},
		{"50.0", "50"},
		{"-50.9", "-50"},
		{"0.3", "0"},
	}
	for _, tt := range tests {
		got := MustFromString(tt.input).TruncateInt()
		assert.Equal(t, tt.want, got.String())
	}
}

func Test_Mod(t *testing.T) {
	// mod(a, b) = a - truncate_to_int(a/b) * b
	a := MustFromString("7")
	b := MustFromString("2")
	got, err := a.Mod(b)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())

	a = MustFromString("-7")
	got, err = a.Mod(b)
	require.NoError(t, err)
	// truncate(-7/2) = truncate(-3.5) = -3; -7 - (-3*2) = -7 + 6 = -1
	assert.Equal(t, "-1", got.String())
}

func Test_PowInt(t *testing.T) {
	base := MustFromString("1.04")
	assert.Equal(t, "1", base.PowInt(0).String())
	assert.Equal(t, "1.04", base.PowInt(1).String())
	assert.Equal(t, "1.0816", base.PowInt(2).String())
}

func Test_PowInt_NegativePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustFromString("2").PowInt(-1)
	})
}

func Test_Rescale_RoundHalfEven(t *testing.T) {
	tests := []struct {
		input string
		exp   int32
		want  string
	}{
		{"1.005", -2, "1"},    // banker's rounding: 0 is even, rounds down to 1.00, which String prints without trailing zeros
		{"1.015", -2, "1.02"}, // 2 is even, rounds up
		{"1.025", -2, "1.02"},
	}
	for _, tt := range tests {
		got := MustFromString(tt.input).Rescale(tt.exp)
		assert.Equal(t, tt.want, got.String(), "rescale(%s, %d)", tt.input, tt.exp)
	}
}

func Test_Exponent(t *testing.T) {
	d := MustFromString("0.04")
	assert.Equal(t, int32(-2), d.Exponent())
}

func Test_Comparisons(t *testing.T) {
	a := MustFromString("5")
	b := MustFromString("7")

	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThan(a))
	assert.True(t, a.LessThanOrEqual(a))
	assert.True(t, a.GreaterThanOrEqual(a))
	assert.True(t, a.Equal(NewFromInt(5)))
	assert.False(t, a.Equal(b))
}

func Test_Max(t *testing.T) {
	a := MustFromString("3")
	b := MustFromString("8")
	assert.Equal(t, b, Max(a, b))
	assert.Equal(t, b, Max(b, a))
}

func Test_Abs(t *testing.T) {
	assert.Equal(t, "5", MustFromString("-5").Abs().String())
	assert.Equal(t, "5", MustFromString("5").Abs().String())
}

func Test_NegOneSentinel(t *testing.T) {
	assert.True(t, NegOne.Equal(NewFromInt(-1)))
}
