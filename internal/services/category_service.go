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

// CategoryInput carries the writable category fields. Update requests leave
// pointers nil for fields that should stay unchanged.
type CategoryInput struct {
	Name   string
	Budget core.Money
	Color  string
	Icon   string
}

type CategoryUpdate struct {
	Name   *string
	Budget *core.Money
	Color  *string
	Icon   *string
}

// CategoryWithSpent joins a category with its derived spent figure.
type CategoryWithSpent struct {
	core.Category
	Spent core.Money
}

type CategoryService struct {
	repo   *storage.SQLiteRepository
	events EventPublisher
}

func NewCategoryService(repo *storage.SQLiteRepository, events EventPublisher) *CategoryService {
	return &CategoryService{repo: repo, events: events}
}

// Create validates the new category budget against the available remainder
// (total budget minus already-allocated category budgets) and persists it.
// The new category's spent is implicitly 0.
func (s *CategoryService) Create(ctx context.Context, userID uuid.UUID, in CategoryInput) (core.Category, error) {
	c := core.Category{
		UserID: userID,
		Name:   in.Name,
		Budget: in.Budget,
		Color:  in.Color,
		Icon:   in.Icon,
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	available, err := s.available(ctx, userID, uuid.Nil)
	if err != nil {
		return core.Category{}, err
	}
	if err := core.ValidateCategoryBudget(in.Budget, available); err != nil {
		return core.Category{}, err
	}

	created, err := s.repo.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}

	publishCheck(ctx, s.events, userID, amqp.ReasonCategoryChanged)
	return created, nil
}

// Update applies the provided fields; omitted fields are left unchanged.
// The category's own current budget is excluded from the allocated sum
// before checking the new value, so re-submitting it unchanged always
// passes.
func (s *CategoryService) Update(ctx context.Context, userID, id uuid.UUID, in CategoryUpdate) (core.Category, error) {
	existing, err := s.repo.GetCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}

	if in.Name != nil {
		existing.Name = *in.Name
	}
	if in.Budget != nil {
		existing.Budget = *in.Budget
	}
	if in.Color != nil {
		existing.Color = *in.Color
	}
	if in.Icon != nil {
		existing.Icon = *in.Icon
	}
	if err := existing.Validate(); err != nil {
		return core.Category{}, err
	}

	available, err := s.available(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	if err := core.ValidateCategoryBudget(existing.Budget, available); err != nil {
		return core.Category{}, err
	}

	updated, err := s.repo.UpdateCategory(ctx, existing)
	if err != nil {
		return core.Category{}, err
	}

	publishCheck(ctx, s.events, userID, amqp.ReasonCategoryChanged)
	return updated, nil
}

// Delete removes the category and cascades deletion of its transactions
// atomically, returning how many transactions went with it.
func (s *CategoryService) Delete(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	deleted, err := s.repo.DeleteCategoryCascade(ctx, userID, id)
	if err != nil {
		return 0, err
	}

	publishCheck(ctx, s.events, userID, amqp.ReasonCategoryDeleted)
	return deleted, nil
}

// List returns the user's categories with derived spent figures; categories
// with no expense transactions report spent 0 (the budget view does not
// filter them).
func (s *CategoryService) List(ctx context.Context, userID uuid.UUID) ([]CategoryWithSpent, error) {
	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	spent := core.SpentByCategory(txs)
	out := make([]CategoryWithSpent, len(categories))
	for i, c := range categories {
		out[i] = CategoryWithSpent{Category: c, Spent: spent[c.ID]}
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id uuid.UUID) (CategoryWithSpent, error) {
	c, err := s.repo.GetCategory(ctx, userID, id)
	if err != nil {
		return CategoryWithSpent{}, err
	}
	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return CategoryWithSpent{}, err
	}
	return CategoryWithSpent{Category: c, Spent: core.SpentFor(txs, id)}, nil
}

// available recomputes the allocatable remainder from current records.
// An unset total budget reads as 0, which rejects any new allocation until
// a total is set.
func (s *CategoryService) available(ctx context.Context, userID, exclude uuid.UUID) (core.Money, error) {
	var total core.Money
	b, err := s.repo.GetBudget(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return core.Money{}, fmt.Errorf("get total budget: %w", err)
	}
	if err == nil {
		total = b.Amount
	}

	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return core.Money{}, err
	}
	return core.AvailableToAllocate(total, categories, exclude), nil
}
