package core

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultTrailingMonths is the analytics window the charts request.
const DefaultTrailingMonths = 5

// MonthBucket is one bar pair in the income-vs-expenses chart. Amounts are
// rounded to whole currency units for display.
type MonthBucket struct {
	Year     int
	Month    time.Month
	Income   int64
	Expenses int64
}

// CategorySlice is one slice of the spending pie: current-month spend for a
// category plus its share of the total.
type CategorySlice struct {
	Name    string
	Amount  Money
	Color   string
	Percent float64
}

// BudgetProgress tracks a category's derived spend against its sub-budget.
type BudgetProgress struct {
	CategoryID uuid.UUID
	Name       string
	Spent      Money
	Budget     Money
	Percent    float64
	OverBudget bool
}

// MonthlySeries buckets transactions into the trailing `months` calendar
// months ending at `now`, oldest first. Months with no transactions are
// present with zero income and expenses.
func MonthlySeries(txs []Transaction, now time.Time, months int) []MonthBucket {
	if months <= 0 {
		return nil
	}
	buckets := make([]MonthBucket, months)
	index := make(map[int]int, months)
	for i := 0; i < months; i++ {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i-months+1, 0)
		buckets[i] = MonthBucket{Year: m.Year(), Month: m.Month()}
		index[monthKey(m.Year(), m.Month())] = i
	}

	// Sum in cents, round once per bucket.
	income := make([]int64, months)
	expenses := make([]int64, months)
	for _, t := range txs {
		i, ok := index[monthKey(t.Date.Year(), t.Date.Month())]
		if !ok {
			continue
		}
		switch t.Type {
		case Income:
			income[i] += t.Amount.Cents
		case Expense:
			expenses[i] += t.Amount.Cents
		}
	}
	for i := range buckets {
		buckets[i].Income = Money{Cents: income[i]}.Units()
		buckets[i].Expenses = Money{Cents: expenses[i]}.Units()
	}
	return buckets
}

func monthKey(year int, month time.Month) int {
	return year*100 + int(month)
}

// CategoryBreakdown builds the pie-chart slices from the category ledger and
// the current month's transactions. Categories with zero spend are omitted
// from chart views; percentages guard against a zero total.
func CategoryBreakdown(categories []Category, txs []Transaction) []CategorySlice {
	spent := SpentByCategory(txs)
	total := TotalSpent(txs)

	var slices []CategorySlice
	for _, c := range categories {
		amount, ok := spent[c.ID]
		if !ok || amount.Cents == 0 {
			continue
		}
		percent := 0.0
		if total.Cents > 0 {
			percent = float64(amount.Cents) / float64(total.Cents) * 100
		}
		slices = append(slices, CategorySlice{
			Name:    c.Name,
			Amount:  amount,
			Color:   c.Color,
			Percent: math.Round(percent),
		})
	}
	return slices
}

// Progress computes spend-vs-budget percentages for every category,
// including zero-spend ones (the budget view does not filter them).
// A category with a zero budget reports 0 percent rather than dividing
// by zero.
func Progress(categories []Category, txs []Transaction) []BudgetProgress {
	spent := SpentByCategory(txs)

	out := make([]BudgetProgress, 0, len(categories))
	for _, c := range categories {
		s := spent[c.ID]
		percent := 0.0
		if c.Budget.Cents > 0 {
			percent = float64(s.Cents) / float64(c.Budget.Cents) * 100
		}
		out = append(out, BudgetProgress{
			CategoryID: c.ID,
			Name:       c.Name,
			Spent:      s,
			Budget:     c.Budget,
			Percent:    percent,
			OverBudget: percent > 100,
		})
	}
	return out
}
