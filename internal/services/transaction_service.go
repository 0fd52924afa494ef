package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cashy/internal/amqp"
	"cashy/internal/core"
	"cashy/internal/storage"
)

// RecentLimit caps the home-screen "last five" listing.
const RecentLimit = 5

type TransactionInput struct {
	Name       string
	Amount     core.Money
	Date       time.Time
	Type       core.TransactionType
	CategoryID uuid.UUID
}

type TransactionUpdate struct {
	Name       *string
	Amount     *core.Money
	Date       *time.Time
	Type       *core.TransactionType
	CategoryID *uuid.UUID
}

type TransactionService struct {
	repo   *storage.SQLiteRepository
	events EventPublisher
}

func NewTransactionService(repo *storage.SQLiteRepository, events EventPublisher) *TransactionService {
	return &TransactionService{repo: repo, events: events}
}

// Create records a transaction, snapshotting the category's display fields.
// A missing category is not an error: the reference is kept and the snapshot
// stays empty, matching the lenient ledger behavior.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		UserID:     userID,
		CategoryID: in.CategoryID,
		Name:       in.Name,
		Amount:     in.Amount,
		Date:       in.Date,
		Type:       in.Type,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.snapshotCategory(ctx, &t)

	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	publishCheck(ctx, s.events, userID, amqp.ReasonTransactionChanged)
	return created, nil
}

// Update applies the provided fields to an existing transaction; omitted
// fields are left unchanged.
func (s *TransactionService) Update(ctx context.Context, userID, id uuid.UUID, in TransactionUpdate) (core.Transaction, error) {
	existing, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Amount != nil {
		existing.Amount = *in.Amount
	}
	if in.Date != nil {
		existing.Date = *in.Date
	}
	if in.Type != nil {
		existing.Type = *in.Type
	}
	if in.CategoryID != nil && *in.CategoryID != existing.CategoryID {
		existing.CategoryID = *in.CategoryID
		existing.CategoryName = ""
		existing.CategoryColor = ""
		existing.CategoryIcon = ""
		s.snapshotCategory(ctx, &existing)
	}
	if err := existing.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.repo.UpdateTransaction(ctx, existing)
	if err != nil {
		return core.Transaction{}, err
	}

	publishCheck(ctx, s.events, userID, amqp.ReasonTransactionChanged)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	publishCheck(ctx, s.events, userID, amqp.ReasonTransactionChanged)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id uuid.UUID) (core.Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// ListThisMonth filters by date within the current calendar month at query
// time.
func (s *TransactionService) ListThisMonth(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	now := time.Now().UTC()
	return s.repo.ListMonthTransactions(ctx, userID, now.Year(), now.Month())
}

// ListRecent returns the current month's newest transactions, capped at
// RecentLimit.
func (s *TransactionService) ListRecent(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	now := time.Now().UTC()
	return s.repo.ListRecentMonthTransactions(ctx, userID, now.Year(), now.Month(), RecentLimit)
}

func (s *TransactionService) snapshotCategory(ctx context.Context, t *core.Transaction) {
	c, err := s.repo.GetCategory(ctx, t.UserID, t.CategoryID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.DebugContext(ctx, "Transaction references unknown category",
			"category_id", t.CategoryID,
			"user_id", t.UserID)
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to snapshot category for transaction",
			"error", err,
			"category_id", t.CategoryID)
		return
	}
	t.CategoryName = c.Name
	t.CategoryColor = c.Color
	t.CategoryIcon = c.Icon
}
