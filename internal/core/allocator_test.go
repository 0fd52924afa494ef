package core

import (
	"testing"

	"github.com/google/uuid"
)

func cat(id uuid.UUID, name string, budgetCents int64) Category {
	return Category{ID: id, Name: name, Budget: Money{Cents: budgetCents}}
}

func TestAvailableToAllocate(t *testing.T) {
	food := uuid.New()
	transport := uuid.New()
	categories := []Category{
		cat(food, "Food", 40000),
		cat(transport, "Transport", 30000),
	}
	total := Money{Cents: 100000}

	// 1000 total, 400 + 300 allocated leaves 300 for a new category.
	if got := AvailableToAllocate(total, categories, uuid.Nil); got.Cents != 30000 {
		t.Fatalf("expected 30000 available, got %d", got.Cents)
	}

	// Editing Food excludes its own 400: available is 300 + 400 = 700.
	if got := AvailableToAllocate(total, categories, food); got.Cents != 70000 {
		t.Fatalf("expected 70000 available when editing, got %d", got.Cents)
	}
}

func TestAvailableNegativeAfterLoweringTotal(t *testing.T) {
	categories := []Category{cat(uuid.New(), "Rent", 80000)}
	got := AvailableToAllocate(Money{Cents: 50000}, categories, uuid.Nil)
	if got.Cents != -30000 {
		t.Fatalf("expected -30000, got %d", got.Cents)
	}
	if !OverAllocated(Money{Cents: 50000}, categories) {
		t.Fatalf("expected over-allocated state")
	}
}

func TestValidateCategoryBudget(t *testing.T) {
	available := Money{Cents: 30000}

	if err := ValidateCategoryBudget(Money{Cents: 30000}, available); err != nil {
		t.Fatalf("exact fit should pass, got %v", err)
	}
	if err := ValidateCategoryBudget(Money{Cents: 30001}, available); err == nil {
		t.Fatalf("expected over-allocation error")
	} else if v, ok := err.(*ValidationError); !ok || v.Kind != KindOverAllocation {
		t.Fatalf("expected over-allocation kind, got %v", err)
	}
	if err := ValidateCategoryBudget(Money{Cents: 0}, available); err == nil {
		t.Fatalf("zero category budget should be rejected")
	}
	if err := ValidateCategoryBudget(Money{Cents: -100}, available); err == nil {
		t.Fatalf("negative category budget should be rejected")
	}
}

func TestValidateTotalBudget(t *testing.T) {
	if err := ValidateTotalBudget(Money{Cents: 1}); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := ValidateTotalBudget(Money{Cents: 0}); err == nil {
		t.Fatalf("expected error for zero total")
	}
	if err := ValidateTotalBudget(Money{Cents: -100}); err == nil {
		t.Fatalf("expected error for negative total")
	}
}

func TestAllocatedExcludesOnlyTheEditedCategory(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	categories := []Category{cat(a, "A", 100), cat(b, "B", 200)}

	if got := Allocated(categories, uuid.Nil); got.Cents != 300 {
		t.Fatalf("expected 300, got %d", got.Cents)
	}
	if got := Allocated(categories, a); got.Cents != 200 {
		t.Fatalf("expected 200 excluding A, got %d", got.Cents)
	}
}
