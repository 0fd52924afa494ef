package core

import "github.com/google/uuid"

// Allocated returns the sum of all category budgets, optionally excluding one
// category. When a category is being edited its own current budget is
// excluded so re-submitting the same value always passes validation.
func Allocated(categories []Category, exclude uuid.UUID) Money {
	var sum int64
	for _, c := range categories {
		if exclude != uuid.Nil && c.ID == exclude {
			continue
		}
		sum += c.Budget.Cents
	}
	return Money{Cents: sum}
}

// AvailableToAllocate is the total budget minus the allocated sum. It is
// recomputed from current records on every call, never cached. The result
// can be negative when the total was lowered below the allocated sum.
func AvailableToAllocate(total Money, categories []Category, exclude uuid.UUID) Money {
	return Money{Cents: total.Cents - Allocated(categories, exclude).Cents}
}

// ValidateCategoryBudget checks a new or edited category budget against the
// available remainder. The failure identifies which rule broke: negative,
// zero, or over-allocation.
func ValidateCategoryBudget(amount, available Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if amount.Cents > available.Cents {
		return Invalid(KindOverAllocation, "category budget exceeds available budget")
	}
	return nil
}

// ValidateTotalBudget rejects non-positive totals. Lowering the total below
// the current allocated sum is allowed; callers surface that through
// OverAllocated instead of failing the write.
func ValidateTotalBudget(amount Money) error {
	if amount.Cents <= 0 {
		return Invalid(KindAmountInvalid, "total budget must be greater than zero")
	}
	return nil
}

// OverAllocated reports whether the sum of category budgets exceeds the
// total. This is the warning-banner state: reachable, never auto-corrected.
func OverAllocated(total Money, categories []Category) bool {
	return Allocated(categories, uuid.Nil).Cents > total.Cents
}
