// Package services orchestrates the ledgers: domain validation in core,
// persistence in storage, best-effort budget-check events over AMQP.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cashy/internal/amqp"
	"cashy/internal/core"
	"cashy/internal/storage"
)

// BudgetStatus is the derived view of a user's total budget: the stored
// amount plus the allocation and spend figures recomputed from current
// records on every call.
type BudgetStatus struct {
	Amount        core.Money
	Allocated     core.Money
	Available     core.Money
	Spent         core.Money
	OverAllocated bool
}

type BudgetService struct {
	repo   *storage.SQLiteRepository
	events EventPublisher
}

func NewBudgetService(repo *storage.SQLiteRepository, events EventPublisher) *BudgetService {
	return &BudgetService{repo: repo, events: events}
}

// Status returns the current budget view. An unset budget reads as 0.
func (s *BudgetService) Status(ctx context.Context, userID uuid.UUID) (BudgetStatus, error) {
	total, err := s.total(ctx, userID)
	if err != nil {
		return BudgetStatus{}, err
	}
	return s.status(ctx, userID, total)
}

// SetTotal replaces the stored total budget (create-if-absent, else update).
// Lowering the total below the allocated sum succeeds; the returned status
// carries the over-allocation warning and a budget-check event is published.
// Existing category budgets are never rescaled.
func (s *BudgetService) SetTotal(ctx context.Context, userID uuid.UUID, amount core.Money) (BudgetStatus, error) {
	if err := core.ValidateTotalBudget(amount); err != nil {
		return BudgetStatus{}, err
	}

	b, err := s.repo.UpsertBudget(ctx, userID, amount)
	if err != nil {
		return BudgetStatus{}, fmt.Errorf("set total budget: %w", err)
	}

	publishCheck(ctx, s.events, userID, amqp.ReasonBudgetSet)
	return s.status(ctx, userID, b.Amount)
}

func (s *BudgetService) total(ctx context.Context, userID uuid.UUID) (core.Money, error) {
	b, err := s.repo.GetBudget(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get total budget: %w", err)
	}
	return b.Amount, nil
}

func (s *BudgetService) status(ctx context.Context, userID uuid.UUID, total core.Money) (BudgetStatus, error) {
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return BudgetStatus{}, err
	}
	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return BudgetStatus{}, err
	}

	allocated := core.Allocated(categories, uuid.Nil)
	return BudgetStatus{
		Amount:        total,
		Allocated:     allocated,
		Available:     core.Money{Cents: total.Cents - allocated.Cents},
		Spent:         core.TotalSpent(txs),
		OverAllocated: core.OverAllocated(total, categories),
	}, nil
}
