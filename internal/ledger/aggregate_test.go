package ledger

import (
	"testing"

	"budgetbuddy/internal/core"

	"github.com/shopspring/decimal"
)

func tx(t core.TransactionType, amount string) core.Transaction {
	return core.Transaction{Type: t, Amount: decimal.RequireFromString(amount)}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		txs         []core.Transaction
		wantIncome  string
		wantExpense string
		wantBalance string
	}{
		{
			name:        "empty collection",
			txs:         nil,
			wantIncome:  "0",
			wantExpense: "0",
			wantBalance: "0",
		},
		{
			name: "mixed collection",
			txs: []core.Transaction{
				tx(core.Income, "500"),
				tx(core.Expense, "120"),
				tx(core.Expense, "30"),
			},
			wantIncome:  "500",
			wantExpense: "150",
			wantBalance: "350",
		},
		{
			name: "income only",
			txs: []core.Transaction{
				tx(core.Income, "10.25"),
				tx(core.Income, "0.75"),
			},
			wantIncome:  "11",
			wantExpense: "0",
			wantBalance: "11",
		},
		{
			name: "expenses exceed income",
			txs: []core.Transaction{
				tx(core.Income, "100"),
				tx(core.Expense, "250.50"),
			},
			wantIncome:  "100",
			wantExpense: "250.5",
			wantBalance: "-150.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.txs)

			if !got.Income.Equal(decimal.RequireFromString(tt.wantIncome)) {
				t.Errorf("income = %s, want %s", got.Income, tt.wantIncome)
			}
			if !got.Expense.Equal(decimal.RequireFromString(tt.wantExpense)) {
				t.Errorf("expense = %s, want %s", got.Expense, tt.wantExpense)
			}
			if !got.Balance.Equal(decimal.RequireFromString(tt.wantBalance)) {
				t.Errorf("balance = %s, want %s", got.Balance, tt.wantBalance)
			}
			// Invariant: balance is always income minus expense.
			if !got.Balance.Equal(got.Income.Sub(got.Expense)) {
				t.Error("balance != income - expense")
			}
		})
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "500"),
		tx(core.Expense, "120"),
		tx(core.Expense, "30"),
	}

	first := Aggregate(txs)
	second := Aggregate(txs)

	if !first.Income.Equal(second.Income) || !first.Expense.Equal(second.Expense) || !first.Balance.Equal(second.Balance) {
		t.Errorf("repeated aggregation differs: %+v vs %+v", first, second)
	}
}

func TestAggregate_UnknownTypeIgnored(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "100"),
		{Type: "transfer", Amount: decimal.NewFromInt(999)},
	}

	got := Aggregate(txs)
	if !got.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, unknown types should not count", got.Balance)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"350", "350.00"},
		{"120.5", "120.50"},
		{"-150.5", "-150.50"},
		{"0", "0.00"},
	}

	for _, tt := range tests {
		if got := FormatAmount(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
