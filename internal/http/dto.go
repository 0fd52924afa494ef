package http

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cashy/internal/core"
	"cashy/internal/services"
)

// amountField accepts both a JSON number and a decimal string ("12.50" or
// "12,50"). Either way the value is parsed into cents exactly once, at the
// boundary; everything past this point works in int64 cents.
type amountField struct {
	set   bool
	money core.Money
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	a.set = true
	a.money = core.Money{Cents: cents}
	return nil
}

// dateField accepts RFC 3339 timestamps and bare "2006-01-02" dates.
type dateField struct {
	set  bool
	when time.Time
}

func (d *dateField) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return core.Invalid(core.KindDateRequired, "date must be RFC 3339 or YYYY-MM-DD")
		}
	}
	d.set = true
	d.when = t.UTC()
	return nil
}

type userView struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewUser(u core.User) userView {
	return userView{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

type budgetView struct {
	Amount        string `json:"amount"`
	AmountCents   int64  `json:"amountCents"`
	Allocated     int64  `json:"allocatedCents"`
	Available     int64  `json:"availableCents"`
	Spent         int64  `json:"spentCents"`
	OverAllocated bool   `json:"overAllocated"`
}

func viewBudget(s services.BudgetStatus) budgetView {
	return budgetView{
		Amount:        formatAmount(s.Amount),
		AmountCents:   s.Amount.Cents,
		Allocated:     s.Allocated.Cents,
		Available:     s.Available.Cents,
		Spent:         s.Spent.Cents,
		OverAllocated: s.OverAllocated,
	}
}

type categoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Budget      string    `json:"budget"`
	BudgetCents int64     `json:"budgetCents"`
	Spent       string    `json:"spent"`
	SpentCents  int64     `json:"spentCents"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
}

func viewCategory(c core.Category, spent core.Money) categoryView {
	return categoryView{
		ID:          c.ID,
		Name:        c.Name,
		Budget:      formatAmount(c.Budget),
		BudgetCents: c.Budget.Cents,
		Spent:       formatAmount(spent),
		SpentCents:  spent.Cents,
		Color:       c.Color,
		Icon:        c.Icon,
	}
}

type transactionView struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Amount        string    `json:"amount"`
	AmountCents   int64     `json:"amountCents"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	CategoryID    uuid.UUID `json:"categoryId,omitempty"`
	CategoryName  string    `json:"categoryName,omitempty"`
	CategoryColor string    `json:"categoryColor,omitempty"`
	CategoryIcon  string    `json:"categoryIcon,omitempty"`
}

func viewTransaction(t core.Transaction) transactionView {
	return transactionView{
		ID:            t.ID,
		Name:          t.Name,
		Amount:        formatAmount(t.Amount),
		AmountCents:   t.Amount.Cents,
		Date:          t.Date,
		Type:          string(t.Type),
		CategoryID:    t.CategoryID,
		CategoryName:  t.CategoryName,
		CategoryColor: t.CategoryColor,
		CategoryIcon:  t.CategoryIcon,
	}
}

func viewTransactions(txs []core.Transaction) []transactionView {
	out := make([]transactionView, len(txs))
	for i, t := range txs {
		out[i] = viewTransaction(t)
	}
	return out
}

type monthBucketView struct {
	Year     int    `json:"year"`
	Month    string `json:"month"`
	Income   int64  `json:"income"`
	Expenses int64  `json:"expenses"`
}

type categorySliceView struct {
	Name    string  `json:"name"`
	Amount  string  `json:"amount"`
	Color   string  `json:"color,omitempty"`
	Percent float64 `json:"percent"`
}

type progressView struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
	Spent      string    `json:"spent"`
	Budget     string    `json:"budget"`
	Percent    float64   `json:"percent"`
	OverBudget bool      `json:"overBudget"`
}

type analyticsView struct {
	Months     []monthBucketView   `json:"months"`
	Breakdown  []categorySliceView `json:"breakdown"`
	Progress   []progressView      `json:"progress"`
	TotalSpent string              `json:"totalSpent"`
}

func viewAnalytics(s services.Summary) analyticsView {
	v := analyticsView{
		Months:     make([]monthBucketView, len(s.Months)),
		Breakdown:  make([]categorySliceView, len(s.Breakdown)),
		Progress:   make([]progressView, len(s.Progress)),
		TotalSpent: formatAmount(s.TotalSpent),
	}
	for i, m := range s.Months {
		v.Months[i] = monthBucketView{
			Year:     m.Year,
			Month:    m.Month.String()[:3],
			Income:   m.Income,
			Expenses: m.Expenses,
		}
	}
	for i, b := range s.Breakdown {
		v.Breakdown[i] = categorySliceView{
			Name:    b.Name,
			Amount:  formatAmount(b.Amount),
			Color:   b.Color,
			Percent: b.Percent,
		}
	}
	for i, p := range s.Progress {
		v.Progress[i] = progressView{
			CategoryID: p.CategoryID,
			Name:       p.Name,
			Spent:      formatAmount(p.Spent),
			Budget:     formatAmount(p.Budget),
			Percent:    p.Percent,
			OverBudget: p.OverBudget,
		}
	}
	return v
}

// formatAmount renders cents as a plain "123.45" decimal string.
func formatAmount(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
