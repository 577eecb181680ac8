package core

import (
	"sort"
	"time"
)

// Transaction is an income or an expense flattened for the history view.
type Transaction struct {
	Kind         Kind
	ID           int64
	Amount       Money
	Description  string
	Date         Date
	CategoryID   int64
	CategoryName string
	CreatedAt    time.Time
}

func (t Transaction) IsIncome() bool { return t.Kind == KindIncome }

// Dashboard is the aggregated view of one user's ledger.
type Dashboard struct {
	TotalIncome   Money
	TotalExpenses Money
	Incomes       []Income
	Expenses      []Expense
}

func (d Dashboard) Balance() Money {
	return d.TotalIncome.Sub(d.TotalExpenses)
}

func IncomeTransaction(i Income) Transaction {
	return Transaction{
		Kind:         KindIncome,
		ID:           i.ID,
		Amount:       i.Amount,
		Description:  i.Description,
		Date:         i.Date,
		CategoryID:   i.CategoryID,
		CategoryName: i.CategoryName,
		CreatedAt:    i.CreatedAt,
	}
}

func ExpenseTransaction(e Expense) Transaction {
	return Transaction{
		Kind:         KindExpense,
		ID:           e.ID,
		Amount:       e.Amount,
		Description:  e.Description,
		Date:         e.Date,
		CategoryID:   e.CategoryID,
		CategoryName: e.CategoryName,
		CreatedAt:    e.CreatedAt,
	}
}

// MergeTransactions flattens incomes and expenses and sorts them newest first.
func MergeTransactions(incomes []Income, expenses []Expense) []Transaction {
	out := make([]Transaction, 0, len(incomes)+len(expenses))
	for _, i := range incomes {
		out = append(out, IncomeTransaction(i))
	}
	for _, e := range expenses {
		out = append(out, ExpenseTransaction(e))
	}
	SortTransactions(out)
	return out
}

// SortTransactions orders by date descending. Same-day rows fall back to
// insertion time, then id, then kind, so the order is fully deterministic.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(a, b int) bool {
		x, y := txs[a], txs[b]
		if !x.Date.Equal(y.Date.Time) {
			return x.Date.After(y.Date.Time)
		}
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.After(y.CreatedAt)
		}
		if x.ID != y.ID {
			return x.ID > y.ID
		}
		return x.Kind == KindExpense && y.Kind == KindIncome
	})
}
