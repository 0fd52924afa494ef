package core

import "github.com/google/uuid"

// SpentByCategory derives the per-category spent figure: the sum of
// expense-type transaction amounts grouped by category id. Income
// transactions never count. Transactions referencing a category id that no
// longer matches anything are still summed here; joining against the
// category ledger is the caller's concern.
func SpentByCategory(txs []Transaction) map[uuid.UUID]Money {
	spent := make(map[uuid.UUID]Money)
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		m := spent[t.CategoryID]
		m.Cents += t.Amount.Cents
		spent[t.CategoryID] = m
	}
	return spent
}

// SpentFor returns the spent figure for a single category, 0 when the
// category has no expense transactions.
func SpentFor(txs []Transaction, categoryID uuid.UUID) Money {
	var sum int64
	for _, t := range txs {
		if t.Type == Expense && t.CategoryID == categoryID {
			sum += t.Amount.Cents
		}
	}
	return Money{Cents: sum}
}

// TotalSpent is the grand total: the sum of all expense-type transaction
// amounts for the user.
func TotalSpent(txs []Transaction) Money {
	var sum int64
	for _, t := range txs {
		if t.Type == Expense {
			sum += t.Amount.Cents
		}
	}
	return Money{Cents: sum}
}
