package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"cashy/internal/core"
	"cashy/internal/storage"
)

// Summary bundles everything the analytics screen charts: the trailing
// income-vs-expenses series, the current-month category breakdown, and the
// per-category budget progress.
type Summary struct {
	Months     []core.MonthBucket
	Breakdown  []core.CategorySlice
	Progress   []core.BudgetProgress
	TotalSpent core.Money
}

type AnalyticsService struct {
	repo           *storage.SQLiteRepository
	trailingMonths int
}

func NewAnalyticsService(repo *storage.SQLiteRepository, trailingMonths int) *AnalyticsService {
	if trailingMonths <= 0 {
		trailingMonths = core.DefaultTrailingMonths
	}
	return &AnalyticsService{repo: repo, trailingMonths: trailingMonths}
}

// Summary derives all chart data from the two ledgers, fetched concurrently.
func (s *AnalyticsService) Summary(ctx context.Context, userID uuid.UUID, now time.Time) (Summary, error) {
	var (
		categories []core.Category
		txs        []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = s.repo.ListCategories(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.repo.ListTransactions(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	monthTxs := filterMonth(txs, now.Year(), now.Month())

	return Summary{
		Months:     core.MonthlySeries(txs, now, s.trailingMonths),
		Breakdown:  core.CategoryBreakdown(categories, monthTxs),
		Progress:   core.Progress(categories, txs),
		TotalSpent: core.TotalSpent(txs),
	}, nil
}

func filterMonth(txs []core.Transaction, year int, month time.Month) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if t.Date.Year() == year && t.Date.Month() == month {
			out = append(out, t)
		}
	}
	return out
}
