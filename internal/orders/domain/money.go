package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount (e.g. 709.97) to integer
// minor units (70997) for the gateway wire format. Values with more
// than two decimal places are rounded to the nearest minor unit; money
// never crosses the wire as a float.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts gateway-reported integer minor units back to
// a major-unit decimal.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}
