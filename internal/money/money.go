// Package money converts between decimal major-unit amounts and the integer
// minor-unit representation the payment gateway requires. 10000 equals 100.00
// for a two-decimal currency.
package money

import (
	"math"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Amount is a currency amount in integer minor units (e.g. cents, öre).
type Amount int64

// ErrOverflow is returned when a decimal amount does not fit the int64
// minor-unit representation. Ordinary currency values never hit this.
var ErrOverflow = errors.New("amount overflows minor-unit representation")

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// FromDecimal converts a major-unit decimal amount to minor units, rounding
// half away from zero. The round trip through Decimal is exact for any value
// with at most two decimal places.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	minor := d.Shift(2).Round(0)
	if minor.Abs().GreaterThan(maxAmount) {
		return 0, errors.Wrapf(ErrOverflow, "amount %s", d)
	}
	return Amount(minor.IntPart()), nil
}

// Decimal converts the amount back to major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Int64 returns the raw minor-unit value.
func (a Amount) Int64() int64 {
	return int64(a)
}

// BasisPoints converts a percentage rate (e.g. 25 for 25%) to basis points
// (percent × 100), rounded to the nearest integer. The gateway represents VAT
// percentages this way to avoid fractional values.
func BasisPoints(ratePercent decimal.Decimal) int {
	return int(ratePercent.Shift(2).Round(0).IntPart())
}
