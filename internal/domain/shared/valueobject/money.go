// Package valueobject holds small immutable types shared across bounded contexts.
package valueobject

import "github.com/shopspring/decimal"

// Currency is the ISO 4217 code all amounts are denominated in
const Currency = "INR"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to paise (2 decimal places, half away from zero)
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PercentOf returns amount * rate / 100
func PercentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// InclusiveTax extracts the tax portion from a tax-inclusive amount:
// amount * rate / (100 + rate)
func InclusiveTax(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() || amount.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(rate).Div(hundred.Add(rate))
}

// MinDecimal returns the smaller of a and b
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxDecimal returns the larger of a and b
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
