// Package ledger derives display totals from a transaction collection.
// The totals are never persisted; every view recomputes them from the full
// list, so a stored balance can never drift from the derived one.
package ledger

import (
	"budgetbuddy/internal/core"

	"github.com/shopspring/decimal"
)

// Totals are the derived aggregates for one transaction collection.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// Aggregate partitions the collection by type and sums the amounts.
// Pure function: no I/O, same input always yields the same Totals.
func Aggregate(txs []core.Transaction) Totals {
	income := decimal.Zero
	expense := decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expense = expense.Add(tx.Amount)
		}
	}

	return Totals{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// FormatAmount renders an amount the way the app displays money, with two
// decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
