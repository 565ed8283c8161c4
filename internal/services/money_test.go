package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCents(t *testing.T) {
	cases := []struct {
		amount string
		cents  int64
	}{
		{"19.99", 1999},
		{"29.99", 2999},
		{"0", 0},
		{"0.01", 1},
		{"1200.00", 120000},
		{"10.555", 1056}, // banker-free half-up rounding to 2 decimals
	}
	for _, tc := range cases {
		assert.Equal(t, tc.cents, Cents(decimal.RequireFromString(tc.amount)), "amount %s", tc.amount)
	}
}

func TestCents_SumHasNoFloatDrift(t *testing.T) {
	// 19.99 + 29.99 must sum to exactly 4998 cents, not 4997.9999999.
	total := Cents(decimal.RequireFromString("19.99")) + Cents(decimal.RequireFromString("29.99"))
	assert.Equal(t, int64(4998), total)
}

func TestFromCents(t *testing.T) {
	assert.True(t, decimal.RequireFromString("49.98").Equal(FromCents(4998)))
	assert.True(t, decimal.Zero.Equal(FromCents(0)))
}
