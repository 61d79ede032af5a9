package shared

import "github.com/shopspring/decimal"

// MinimalUnit is the smallest currency step the marketplace accepts (one cent)
var MinimalUnit = decimal.New(1, -2)

// FromCents converts an integer amount of cents to a currency amount
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a currency amount to whole cents, truncating sub-cent fractions
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Truncate(0).IntPart()
}

// MaxAmount returns the larger of two currency amounts
func MaxAmount(a, b decimal.Decimal) decimal.Decimal {
	if b.GreaterThan(a) {
		return b
	}
	return a
}
