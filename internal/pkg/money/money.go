// Package money does the euro arithmetic for bookings on decimals so that
// balances round the same way on every path.
package money

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Sum adds amounts exactly and returns the total rounded to cents.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Open returns gross minus paid, rounded to cents. It goes negative on overpayment.
func Open(gross, paid float64) float64 {
	f, _ := decimal.NewFromFloat(gross).Sub(decimal.NewFromFloat(paid)).Round(2).Float64()
	return f
}

// Net strips VAT from a gross price: gross / (1 + rate/100).
func Net(gross, vatRate float64) float64 {
	if vatRate <= 0 {
		return Round2(gross)
	}
	divisor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(vatRate).Div(decimal.NewFromInt(100)))
	f, _ := decimal.NewFromFloat(gross).Div(divisor).Round(2).Float64()
	return f
}
