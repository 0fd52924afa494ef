package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashy/internal/core"
	"cashy/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestUser(t *testing.T, repo *storage.SQLiteRepository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return u
}

func TestBudgetStatusUnset(t *testing.T) {
	repo := newTestRepo(t)
	u := newTestUser(t, repo)
	svc := NewBudgetService(repo, nil)

	status, err := svc.Status(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), status.Amount.Cents)
	assert.Equal(t, int64(0), status.Spent.Cents)
	assert.False(t, status.OverAllocated)
}

func TestSetTotalUpsert(t *testing.T) {
	repo := newTestRepo(t)
	u := newTestUser(t, repo)
	svc := NewBudgetService(repo, nil)
	ctx := context.Background()

	status, err := svc.SetTotal(ctx, u.ID, core.Money{Cents: 100000})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), status.Amount.Cents)
	assert.Equal(t, int64(100000), status.Available.Cents)

	// Setting again replaces, never creates a second budget.
	status, err = svc.SetTotal(ctx, u.ID, core.Money{Cents: 80000})
	require.NoError(t, err)
	assert.Equal(t, int64(80000), status.Amount.Cents)
}

func TestSetTotalRejectsNonPositive(t *testing.T) {
	repo := newTestRepo(t)
	u := newTestUser(t, repo)
	svc := NewBudgetService(repo, nil)

	_, err := svc.SetTotal(context.Background(), u.ID, core.Money{Cents: 0})
	require.Error(t, err)
	_, err = svc.SetTotal(context.Background(), u.ID, core.Money{Cents: -100})
	require.Error(t, err)
}

func TestLoweringTotalFlagsOverAllocation(t *testing.T) {
	repo := newTestRepo(t)
	u := newTestUser(t, repo)
	budgets := NewBudgetService(repo, nil)
	categories := NewCategoryService(repo, nil)
	ctx := context.Background()

	_, err := budgets.SetTotal(ctx, u.ID, core.Money{Cents: 100000})
	require.NoError(t, err)
	_, err = categories.Create(ctx, u.ID, CategoryInput{Name: "Rent", Budget: core.Money{Cents: 80000}})
	require.NoError(t, err)

	// Lowering below the allocated sum succeeds but flags the state.
	status, err := budgets.SetTotal(ctx, u.ID, core.Money{Cents: 50000})
	require.NoError(t, err)
	assert.True(t, status.OverAllocated)
	assert.Equal(t, int64(-30000), status.Available.Cents)

	// Category budgets were not rescaled.
	list, err := categories.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(80000), list[0].Budget.Cents)
}
