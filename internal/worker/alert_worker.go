package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cashy/internal/amqp"
	"cashy/internal/core"
	"cashy/internal/log"
	"cashy/internal/storage"
)

// AlertWorker consumes budget-check messages and re-derives a user's
// allocation and spend from current records, logging structured warnings
// when category budgets exceed the total budget or spend exceeds a
// category's sub-budget. It only reads; nothing is auto-corrected.
type AlertWorker struct {
	repo   *storage.SQLiteRepository
	logger *log.Logger
}

func NewAlertWorker(repo *storage.SQLiteRepository, logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleBudgetCheck processes a single budget-check message.
func (w *AlertWorker) HandleBudgetCheck(ctx context.Context, msg *amqp.BudgetCheckMessage) error {
	w.logger.DebugContext(ctx, "Processing budget check",
		log.FieldUserID, msg.UserID,
		log.FieldReason, msg.Reason)

	total, err := w.totalBudget(ctx, msg.UserID)
	if err != nil {
		return err
	}
	categories, err := w.repo.ListCategories(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	txs, err := w.repo.ListTransactions(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	if core.OverAllocated(total, categories) {
		allocated := core.Allocated(categories, uuid.Nil)
		w.logger.WarnContext(ctx, "Category budgets exceed total budget",
			log.FieldUserID, msg.UserID,
			log.FieldReason, msg.Reason,
			log.FieldBudgetCents, total.Cents,
			log.FieldAmountCents, allocated.Cents)
	}

	for _, p := range core.Progress(categories, txs) {
		if !p.OverBudget {
			continue
		}
		w.logger.WarnContext(ctx, "Category spend exceeds its budget",
			log.FieldUserID, msg.UserID,
			log.FieldCategoryID, p.CategoryID,
			log.FieldCategory, p.Name,
			log.FieldBudgetCents, p.Budget.Cents,
			log.FieldAmountCents, p.Spent.Cents)
	}

	return nil
}

func (w *AlertWorker) totalBudget(ctx context.Context, userID uuid.UUID) (core.Money, error) {
	b, err := w.repo.GetBudget(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get budget: %w", err)
	}
	return b.Amount, nil
}
