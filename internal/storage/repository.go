package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"cashy/internal/core"
)

var (
	// ErrNotFound indicates a record does not exist for the given user.
	ErrNotFound = errors.New("record not found")
	// ErrEmailExists and ErrUsernameExists surface registration conflicts
	// with enough detail for a field-specific message.
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

// SQLiteRepository persists the four collections: users, budgets,
// categories, transactions. Every query except user lookup is scoped by
// user id.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable; readiness probes use it.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID.String(), u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return core.User{}, mapUserConflict(err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id uuid.UUID) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id.String()))
}

func (r *SQLiteRepository) UpdateUserProfile(ctx context.Context, id uuid.UUID, username, email string) (core.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ? WHERE id = ?`, username, email, id.String())
	if err != nil {
		return core.User{}, mapUserConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.User{}, ErrNotFound
	}
	return r.GetUserByID(ctx, id)
}

func (r *SQLiteRepository) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id.String())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var id string
	err := row.Scan(&id, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return core.User{}, fmt.Errorf("parse user id: %w", err)
	}
	return u, nil
}

func mapUserConflict(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrEmailExists
	case strings.Contains(msg, "users.username"):
		return ErrUsernameExists
	default:
		return fmt.Errorf("write user: %w", err)
	}
}

// --- budgets ---

// UpsertBudget implements the set-total-budget semantics: create on first
// set, update amount in place thereafter.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, userID uuid.UUID, amount core.Money) (core.Budget, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (id, user_id, amount_cents, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET amount_cents = excluded.amount_cents, updated_at = excluded.updated_at`,
		uuid.New().String(), userID.String(), amount.Cents, time.Now().UTC())
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return r.GetBudget(ctx, userID)
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID uuid.UUID) (core.Budget, error) {
	var b core.Budget
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, amount_cents FROM budgets WHERE user_id = ?`, userID.String()).
		Scan(&id, &b.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.ID, err = uuid.Parse(id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse budget id: %w", err)
	}
	b.UserID = userID
	return b, nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, budget_cents, color, icon) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.UserID.String(), c.Name, c.Budget.Cents, c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", c.ID,
		"user_id", c.UserID,
		"budget_cents", c.Budget.Cents)
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, budget_cents, color, icon FROM categories WHERE user_id = ? ORDER BY created_at, rowid`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var id string
		if err := rows.Scan(&id, &c.Name, &c.Budget.Cents, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		c.UserID = userID
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id uuid.UUID) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT name, budget_cents, color, icon FROM categories WHERE id = ? AND user_id = ?`,
		id.String(), userID.String()).
		Scan(&c.Name, &c.Budget.Cents, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.ID = id
	c.UserID = userID
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, budget_cents = ?, color = ?, icon = ? WHERE id = ? AND user_id = ?`,
		c.Name, c.Budget.Cents, c.Color, c.Icon, c.ID.String(), c.UserID.String())
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, ErrNotFound
	}
	return c, nil
}

// DeleteCategoryCascade removes the category and every transaction that
// references it in a single SQL transaction, so a mid-sequence failure can
// never leave orphaned transactions behind.
func (r *SQLiteRepository) DeleteCategoryCascade(ctx context.Context, userID, id uuid.UUID) (deletedTx int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cascade delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM transactions WHERE category_id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return 0, fmt.Errorf("delete category transactions: %w", err)
	}
	deletedTx, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit cascade delete: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted with cascade",
		"category_id", id,
		"user_id", userID,
		"transactions_removed", deletedTx)
	return deletedTx, nil
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, name, amount_cents, date, type, category_name, category_color, category_icon)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID.String(), t.CategoryID.String(), t.Name, t.Amount.Cents,
		t.Date.UTC(), string(t.Type), t.CategoryName, t.CategoryColor, t.CategoryIcon)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"transaction_type", t.Type,
		"amount_cents", t.Amount.Cents)
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, name, amount_cents, date, type, category_name, category_color, category_icon
		 FROM transactions WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, err
	}
	t.UserID = userID
	return t, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, name = ?, amount_cents = ?, date = ?, type = ?,
		 category_name = ?, category_color = ?, category_icon = ?
		 WHERE id = ? AND user_id = ?`,
		t.CategoryID.String(), t.Name, t.Amount.Cents, t.Date.UTC(), string(t.Type),
		t.CategoryName, t.CategoryColor, t.CategoryIcon,
		t.ID.String(), t.UserID.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, ErrNotFound
	}
	return t, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID uuid.UUID) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, userID,
		`SELECT id, category_id, name, amount_cents, date, type, category_name, category_color, category_icon
		 FROM transactions WHERE user_id = ? ORDER BY date DESC, rowid DESC`,
		userID.String())
}

// ListMonthTransactions filters by date within the given calendar month.
func (r *SQLiteRepository) ListMonthTransactions(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]core.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return r.queryTransactions(ctx, userID,
		`SELECT id, category_id, name, amount_cents, date, type, category_name, category_color, category_icon
		 FROM transactions WHERE user_id = ? AND date >= ? AND date < ? ORDER BY date DESC, rowid DESC`,
		userID.String(), start, end)
}

// ListRecentMonthTransactions is the "last five" home-screen variant:
// current-month records, newest first, capped.
func (r *SQLiteRepository) ListRecentMonthTransactions(ctx context.Context, userID uuid.UUID, year int, month time.Month, limit int) ([]core.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return r.queryTransactions(ctx, userID,
		`SELECT id, category_id, name, amount_cents, date, type, category_name, category_color, category_icon
		 FROM transactions WHERE user_id = ? AND date >= ? AND date < ? ORDER BY date DESC, rowid DESC LIMIT ?`,
		userID.String(), start, end, limit)
}

// ListSinceTransactions returns every transaction on or after the cutoff,
// used to feed the trailing-month analytics series.
func (r *SQLiteRepository) ListSinceTransactions(ctx context.Context, userID uuid.UUID, since time.Time) ([]core.Transaction, error) {
	return r.queryTransactions(ctx, userID,
		`SELECT id, category_id, name, amount_cents, date, type, category_name, category_color, category_icon
		 FROM transactions WHERE user_id = ? AND date >= ? ORDER BY date`,
		userID.String(), since)
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, userID uuid.UUID, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		t.UserID = userID
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var id, categoryID, txType string
	err := row.Scan(&id, &categoryID, &t.Name, &t.Amount.Cents, &t.Date, &txType,
		&t.CategoryName, &t.CategoryColor, &t.CategoryIcon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	if t.ID, err = uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id: %w", err)
	}
	if t.CategoryID, err = uuid.Parse(categoryID); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction category id: %w", err)
	}
	t.Type = core.TransactionType(txType)
	return t, nil
}
