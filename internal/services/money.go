package services

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Cents converts a two-decimal currency amount to integer minor units. All
// summation in the checkout path happens on the int64 result, never on
// floating point, so the amount charged by the gateway is exactly the amount
// recorded on the order.
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(hundred).IntPart()
}

// FromCents converts integer minor units back to a decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}
