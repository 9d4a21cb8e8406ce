// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

type Money struct {
	Amount   float64
	Currency string
}

var currencySymbols = map[string]string{
	"ZAR": "R",
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Display renders the amount the way the price panel shows it, e.g. "R64.80".
func (m Money) Display() string {
	if sym, ok := currencySymbols[m.Currency]; ok {
		return fmt.Sprintf("%s%.2f", sym, m.Amount)
	}
	if m.Currency == "" {
		return fmt.Sprintf("%.2f", m.Amount)
	}
	return fmt.Sprintf("%s %.2f", m.Currency, m.Amount)
}
