package matcher

import (
	"math"

	"github.com/shopspring/decimal"
)

// Variance returns round(Σ unmatchedA − Σ unmatchedB, 2).
// Sums run in decimal so cents do not drift across long lists. NaN and
// infinite amounts are skipped.
func Variance(unmatchedA, unmatchedB []float64) float64 {
	return sum(unmatchedA).Sub(sum(unmatchedB)).Round(2).InexactFloat64()
}

func sum(amounts []float64) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total
}
