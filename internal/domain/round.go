package domain

import "github.com/shopspring/decimal"

// RoundScore rounds a score-like value to 3 decimal places for API output.
func RoundScore(v float64) float64 {
	return decimal.NewFromFloat(v).Round(3).InexactFloat64()
}
