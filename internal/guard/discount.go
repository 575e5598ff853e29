package guard

import (
	"strings"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeDiscount derives a discount percentage from a list/current price
// pair as entered in the product forms. Both inputs must parse as numbers
// and the list price must be positive; anything else yields "" — never
// "0", never an error. The result is ((list-current)/list)*100 formatted
// to exactly two decimal places.
//
// A current price above the list price produces a negative percentage.
// This is deliberately not clamped: the dashboard has always displayed
// markup this way and stored catalog rows depend on it.
func ComputeDiscount(listPrice, currentPrice string) string {
	list, err := decimal.NewFromString(strings.TrimSpace(listPrice))
	if err != nil {
		return ""
	}
	current, err := decimal.NewFromString(strings.TrimSpace(currentPrice))
	if err != nil {
		return ""
	}
	if list.Sign() <= 0 {
		return ""
	}
	return list.Sub(current).Div(list).Mul(oneHundred).StringFixed(2)
}

// DiscountOrZero is the storage form of ComputeDiscount: the parsed
// percentage, or 0 when no discount is computable.
func DiscountOrZero(listPrice, currentPrice string) float64 {
	s := ComputeDiscount(listPrice, currentPrice)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParsePrice parses a raw price field. Prices must be non-negative.
func ParsePrice(s string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.Sign() < 0 {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
