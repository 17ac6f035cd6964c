package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		want  string
		cents Cents
	}{
		{cents: 0, want: "$0.00"},
		{cents: 5, want: "$0.05"},
		{cents: 25000, want: "$250.00"},
		{cents: 123456, want: "$1,234.56"},
		{cents: 100000000, want: "$1,000,000.00"},
		{cents: -1200, want: "-$12.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cents.String())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Cents
		wantErr bool
	}{
		{input: "12", want: 1200},
		{input: "$1,234.56", want: 123456},
		{input: "-12.5", want: -1250},
		{input: "0.005", want: 1},
		{input: "19.994", want: 1999},
		{input: "", wantErr: true},
		{input: "twelve", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecimalBoundary(t *testing.T) {
	c := Cents(123456)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(c.Decimal()))
	assert.Equal(t, c, FromDecimal(c.Decimal()))
	assert.Equal(t, Cents(3334), FromDecimal(decimal.RequireFromString("33.335")))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, Cents(25000), CeilDiv(50000, 2))
	assert.Equal(t, Cents(16667), CeilDiv(50000, 3))
	assert.Equal(t, Cents(50000), CeilDiv(50000, 0))
	assert.Equal(t, Cents(50000), CeilDiv(50000, -4))
	assert.Equal(t, Cents(0), CeilDiv(0, 3))
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, Cents(5), Min(5, 9))
	assert.Equal(t, Cents(9), Max(5, 9))
	assert.Equal(t, Cents(7), Cents(-7).Abs())
	assert.Equal(t, Cents(6), Sum(1, 2, 3))
}
