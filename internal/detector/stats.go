package detector

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-intelligence/internal/models"
)

// Statistics summarises a statement. Totals are summed exactly and are both
// reported as positive numbers.
func Statistics(txns []models.Transaction, recurring int) models.Statistics {
	st := models.Statistics{
		TotalTransactions: len(txns),
		RecurringDetected: recurring,
	}
	if len(txns) == 0 {
		return st
	}

	debits, credits := decimal.Zero, decimal.Zero
	first, last := txns[0].Date, txns[0].Date
	for _, t := range txns {
		amt := decimal.NewFromFloat(t.Amount)
		if amt.IsNegative() {
			debits = debits.Add(amt.Neg())
		} else {
			credits = credits.Add(amt)
		}
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}

	st.TotalDebits, _ = debits.Round(2).Float64()
	st.TotalCredits, _ = credits.Round(2).Float64()
	st.DateRangeDays = int(last.Sub(first).Hours() / 24)
	return st
}

// amountStats returns the mean, minimum and maximum of signed amounts. The
// mean is rounded to pence.
func amountStats(amounts []float64) (avg, lo, hi float64) {
	if len(amounts) == 0 {
		return 0, 0, 0
	}
	sum := decimal.Zero
	lo, hi = amounts[0], amounts[0]
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	avg, _ = sum.Div(decimal.NewFromInt(int64(len(amounts)))).Round(2).Float64()
	return avg, lo, hi
}
