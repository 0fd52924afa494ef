package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// User is an account record. The password is stored as a bcrypt hash,
	// never plaintext.
	User struct {
		ID           uuid.UUID
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Budget is the single overall monthly ceiling per user. At most one
	// row exists per user; setting it again updates in place.
	Budget struct {
		ID     uuid.UUID
		UserID uuid.UUID
		Amount Money
	}

	// Category is a user-defined spending bucket with its own sub-budget.
	// Spent is never stored on the record, it is always derived from the
	// transaction ledger.
	Category struct {
		ID     uuid.UUID
		UserID uuid.UUID
		Name   string
		Budget Money
		Color  string
		Icon   string
	}

	// Transaction is a single income or expense record. The category
	// display fields are snapshotted for rendering convenience and are
	// not authoritative.
	Transaction struct {
		ID         uuid.UUID
		UserID     uuid.UUID
		CategoryID uuid.UUID
		Name       string
		Amount     Money
		Date       time.Time
		Type       TransactionType

		CategoryName  string
		CategoryColor string
		CategoryIcon  string
	}
)

// ErrorKind identifies which validation rule failed so callers can render
// a specific message without sniffing error text.
type ErrorKind string

const (
	KindAmountInvalid      ErrorKind = "amount_invalid"
	KindAmountZero         ErrorKind = "amount_zero"
	KindOverAllocation     ErrorKind = "over_allocation"
	KindNameRequired       ErrorKind = "name_required"
	KindDateRequired       ErrorKind = "date_required"
	KindTypeInvalid        ErrorKind = "type_invalid"
	KindUserNotFound       ErrorKind = "user_not_found"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindWeakPassword       ErrorKind = "weak_password"
	KindEmailTaken         ErrorKind = "email_taken"
	KindUsernameTaken      ErrorKind = "username_taken"
)

// ValidationError is a domain validation failure with a machine-readable kind.
type ValidationError struct {
	Kind ErrorKind
	Msg  string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Invalid(kind ErrorKind, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Msg: msg}
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return Invalid(KindTypeInvalid, `type must be "income" or "expense"`)
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return Invalid(KindAmountInvalid, "amount must not be negative")
	}
	if m.Cents == 0 {
		return Invalid(KindAmountZero, "amount must be greater than zero")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid(KindNameRequired, "category name is required")
	}
	if len(c.Name) > 100 {
		return Invalid(KindNameRequired, "category name too long (max 100 characters)")
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return Invalid(KindNameRequired, "transaction description is required")
	}
	if len(t.Name) > 200 {
		return Invalid(KindNameRequired, "transaction description too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return Invalid(KindDateRequired, "transaction date is required")
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	return t.Amount.Validate()
}
