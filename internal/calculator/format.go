package calculator

import "github.com/shopspring/decimal"

// FormatCurrency renders an amount for display as "$" plus two decimals.
// Rounding uses the exact binary value of amount, so 1.005 shows as "$1.00".
// Calculations never round; only presentation code should call this.
func FormatCurrency(amount float64) string {
	return "$" + cents(amount).StringFixed(2)
}

// RoundCents rounds an amount to two decimals for display surfaces that
// need a number rather than a string (spreadsheet cells).
func RoundCents(amount float64) float64 {
	return cents(amount).InexactFloat64()
}

func cents(amount float64) decimal.Decimal {
	return decimal.NewFromFloatWithExponent(amount, -2)
}
