package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashy/internal/auth"
	"cashy/internal/log"
	"cashy/internal/services"
	"cashy/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	srv := NewServer(":0", Deps{
		Repo:         repo,
		Tokens:       auth.NewTokenManager("test-secret", "cashy", time.Hour),
		Budgets:      services.NewBudgetService(repo, nil),
		Categories:   services.NewCategoryService(repo, nil),
		Transactions: services.NewTransactionService(repo, nil),
		Analytics:    services.NewAnalyticsService(repo, 5),
		Logger:       log.New(log.DefaultConfig()),
	})
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

// registerUser registers a throwaway account and returns its token.
func registerUser(t *testing.T, srv *Server, username, email string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NotEmpty(t, env.Data.Token)
	return env.Data.Token
}

func TestRegisterReturnsTokenAndUser(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.NotEmpty(t, env.Data.Token)
	assert.Equal(t, "alice", env.Data.User.Username)
	assert.Equal(t, "alice@example.com", env.Data.User.Email)
}

func TestRegisterDuplicateFields(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "other", "email": "alice@example.com", "password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email_taken", decodeEnvelope(t, rec).Kind)

	rec = doJSON(t, srv, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username_taken", decodeEnvelope(t, rec).Kind)
}

func TestRegisterWeakPassword(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "weak",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "weak_password", decodeEnvelope(t, rec).Kind)
}

func TestLoginStatusCodes(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "alice", "alice@example.com")

	// Unknown email is 404, wrong password is 400.
	rec := doJSON(t, srv, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "nobody@example.com", "password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "user_not_found", decodeEnvelope(t, rec).Kind)

	rec = doJSON(t, srv, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeEnvelope(t, rec).Kind)

	rec = doJSON(t, srv, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice@example.com", "password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)

	// No token: 401.
	rec := doJSON(t, srv, http.MethodGet, "/api/budgets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token: 403.
	rec = doJSON(t, srv, http.MethodGet, "/api/budgets", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := registerUser(t, srv, "alice", "alice@example.com")
	rec = doJSON(t, srv, http.MethodGet, "/api/budgets", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBudgetFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	// Unset budget reads as zero.
	rec := doJSON(t, srv, http.MethodGet, "/api/budgets", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data struct {
			AmountCents    int64 `json:"amountCents"`
			AvailableCents int64 `json:"availableCents"`
			OverAllocated  bool  `json:"overAllocated"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, int64(0), env.Data.AmountCents)

	// Amount accepted as a string with decimals.
	rec = doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": "1000.00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.Data.AmountCents = 0
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, int64(100000), env.Data.AmountCents)
	assert.Equal(t, int64(100000), env.Data.AvailableCents)

	// And as a JSON number.
	rec = doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": 750.50})
	require.Equal(t, http.StatusOK, rec.Code)

	// Invalid amounts are rejected at the boundary.
	rec = doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": "1000"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "Food", "budget": "400", "color": "#f00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data struct {
			ID          string `json:"id"`
			BudgetCents int64  `json:"budgetCents"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, int64(40000), created.Data.BudgetCents)

	// Over-allocation rejected with its own kind.
	rec = doJSON(t, srv, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "TooBig", "budget": "601",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "over_allocation", decodeEnvelope(t, rec).Kind)

	// Partial update keeps the other fields.
	rec = doJSON(t, srv, http.MethodPut, "/api/categories/"+created.Data.ID, token, map[string]any{
		"name": "Groceries",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/api/categories/"+created.Data.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Data struct {
			Name        string `json:"name"`
			BudgetCents int64  `json:"budgetCents"`
			SpentCents  int64  `json:"spentCents"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Groceries", got.Data.Name)
	assert.Equal(t, int64(40000), got.Data.BudgetCents)
	assert.Equal(t, int64(0), got.Data.SpentCents)

	// Unknown id and malformed id.
	rec = doJSON(t, srv, http.MethodGet, "/api/categories/3b6212a0-6a25-4f4b-8a6a-000000000000", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/categories/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryDeleteCascadesTransactions(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": "1000"})
	rec := doJSON(t, srv, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "Food", "budget": "400",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	for i := 0; i < 2; i++ {
		rec = doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
			"name": fmt.Sprintf("t%d", i), "amount": "10", "date": "2026-08-10",
			"type": "expense", "categoryId": created.Data.ID,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/categories/"+created.Data.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var del struct {
		Data struct {
			DeletedTransactions int64 `json:"deletedTransactions"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&del))
	assert.Equal(t, int64(2), del.Data.DeletedTransactions)

	rec = doJSON(t, srv, http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Data []transactionView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	assert.Empty(t, listed.Data)
}

func TestTransactionFlow(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	doJSON(t, srv, http.MethodPost, "/api/budgets", token, map[string]any{"amount": "1000"})
	rec := doJSON(t, srv, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "Food", "budget": "400", "color": "#f00",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cat))

	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"name": "groceries", "amount": "25.50", "date": "2026-08-10",
		"type": "expense", "categoryId": cat.Data.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data transactionView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, int64(2550), created.Data.AmountCents)
	assert.Equal(t, "Food", created.Data.CategoryName)

	// Type outside income/expense is rejected.
	rec = doJSON(t, srv, http.MethodPost, "/api/expenses", token, map[string]any{
		"name": "x", "amount": "1", "date": "2026-08-10", "type": "transfer", "categoryId": cat.Data.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "type_invalid", decodeEnvelope(t, rec).Kind)

	// Partial update.
	rec = doJSON(t, srv, http.MethodPut, "/api/expenses/"+created.Data.ID.String(), token, map[string]any{
		"amount": "30",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated struct {
		Data transactionView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, int64(3000), updated.Data.AmountCents)
	assert.Equal(t, "groceries", updated.Data.Name)

	rec = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.Data.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodGet, "/api/expenses/"+created.Data.ID.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	alice := registerUser(t, srv, "alice", "alice@example.com")
	bob := registerUser(t, srv, "bob", "bob@example.com")

	doJSON(t, srv, http.MethodPost, "/api/budgets", alice, map[string]any{"amount": "1000"})
	rec := doJSON(t, srv, http.MethodPost, "/api/categories", alice, map[string]any{
		"name": "Food", "budget": "400",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	// Bob cannot read or delete Alice's category.
	rec = doJSON(t, srv, http.MethodGet, "/api/categories/"+created.Data.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, srv, http.MethodDelete, "/api/categories/"+created.Data.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfileAndPassword(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/api/users/profile", token, map[string]string{
		"username": "alice2", "email": "alice2@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Wrong current password.
	rec = doJSON(t, srv, http.MethodPost, "/api/users/password", token, map[string]string{
		"currentPassword": "wrong", "newPassword": "N3w$ecret!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/users/password", token, map[string]string{
		"currentPassword": "Sup3r$ecret", "newPassword": "N3w$ecret!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// New password logs in.
	rec = doJSON(t, srv, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "alice2@example.com", "password": "N3w$ecret!",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyticsShape(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alice", "alice@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/analytics", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Months []monthBucketView `json:"months"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	// Five trailing months are always present, even on an empty ledger.
	assert.Len(t, env.Data.Months, 5)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
