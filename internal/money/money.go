// Package money handles currency amounts held as integer minor units.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an amount string cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents is a signed amount in minor currency units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// String formats c as dollars, e.g. "$1,234.56" or "-$12.00".
func (c Cents) String() string {
	return Format(c)
}

// Format renders c with a dollar sign and thousands separators.
func Format(c Cents) string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole, frac := v/100, v%100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), frac)
}

// Parse reads a dollar amount such as "1234.5", "$1,234.56" or "-12".
// Fractions beyond a cent are rounded half away from zero.
func Parse(s string) (Cents, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.Replace(clean, "$", "", 1)
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromDecimal(d), nil
}

// FromDecimal converts a dollar decimal to cents.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Decimal converts c to a dollar decimal.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(c)).Div(hundred)
}

// Abs returns the absolute value of c.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// CeilDiv divides c into n shares rounding up. A non-positive n is treated as 1.
func CeilDiv(c Cents, n int) Cents {
	if n <= 1 {
		return c
	}
	d := Cents(n)
	if c <= 0 {
		return c / d
	}
	return (c + d - 1) / d
}

// Min returns the smaller of a and b.
func Min(a, b Cents) Cents {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Cents) Cents {
	if a > b {
		return a
	}
	return b
}

// Sum adds every amount.
func Sum(amounts ...Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
