// README: Common money value object used across modules.
package types

import "math"

// Money is an amount in minor units (cents).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// MoneyFromMajor converts a major-unit price (e.g. 97.12 EUR) to minor units, rounding half away from zero.
func MoneyFromMajor(v float64, currency string) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: currency}
}
