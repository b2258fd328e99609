package service

import "github.com/shopspring/decimal"

// balanceTolerance absorbs cent rounding when settling installment plans.
var balanceTolerance = decimal.RequireFromString("-0.01")

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// splitInstallments divides remaining over n scheduled payments: every
// payment but the last is remaining/n floored to the cent, and the last takes
// whatever is left so the schedule sums exactly to remaining.
func splitInstallments(remaining decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	per := remaining.Div(decimal.NewFromInt(int64(n))).RoundFloor(2)
	out := make([]decimal.Decimal, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		out[i] = per
		allocated = allocated.Add(per)
	}
	out[n-1] = round2(remaining.Sub(allocated))
	return out
}
