package common

import "github.com/shopspring/decimal"

// MoneyString renders a decimal amount at the presentation boundary: two
// fixed decimal places. Intermediate pricing arithmetic stays at full
// precision; this is the only place amounts get rounded for responses.
func MoneyString(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
