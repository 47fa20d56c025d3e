package handlers

import (
	"net/http"
	"strconv"
	"time"

	"freelance-crm/internal/models"
)

// StatsCategoryItem represents a category with its spending statistics.
type StatsCategoryItem struct {
	Category      string
	Total         float64
	Count         int
	Percentage    float64
	CategoryStyle CategoryStyle
}

// StatsViewModel is the data passed to the statistics view template.
type StatsViewModel struct {
	Year             int
	Month            int
	MonthName        string
	Total            float64
	Billable         float64
	Reimbursable     float64
	BusinessExpenses float64
	Categories       []StatsCategoryItem
	Expenses         []ExpenseItem
	PrevYear         int
	PrevMonth        int
	NextYear         int
	NextMonth        int
	IsCurrentMonth   bool
}

// Statistics renders the monthly expense breakdown.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := statsMonth(r, now)

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)
	f := models.ExpenseFilter{From: from, To: to}

	user := GetUserFromContext(r)
	report, err := h.reports.ExpenseSummary(r.Context(), user.ID, f)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	expenses, err := h.db.ListExpenses(r.Context(), user.ID, f)
	if err != nil {
		h.plainError(w, r, err)
		return
	}

	categoryItems := make([]StatsCategoryItem, 0, len(report.Categories))
	for _, ct := range report.Categories {
		percentage := 0.0
		if report.Total > 0 {
			percentage = (ct.Total / report.Total) * 100
		}
		categoryItems = append(categoryItems, StatsCategoryItem{
			Category:      ct.Category,
			Total:         ct.Total,
			Count:         ct.Count,
			Percentage:    percentage,
			CategoryStyle: getCategoryStyle(ct.Category),
		})
	}

	expenseItems := make([]ExpenseItem, 0, len(expenses))
	for _, e := range expenses {
		expenseItems = append(expenseItems, ExpenseItem{Expense: e, CategoryStyle: getCategoryStyle(e.Category)})
	}

	prev := from.AddDate(0, -1, 0)
	h.render(w, r, "stats.html", h.page(r, "Statistics", "expenses", StatsViewModel{
		Year:             year,
		Month:            month,
		MonthName:        from.Month().String(),
		Total:            report.Total,
		Billable:         report.Billable,
		Reimbursable:     report.Reimbursable,
		BusinessExpenses: report.BusinessExpenses,
		Categories:       categoryItems,
		Expenses:         expenseItems,
		PrevYear:         prev.Year(),
		PrevMonth:        int(prev.Month()),
		NextYear:         to.Year(),
		NextMonth:        int(to.Month()),
		IsCurrentMonth:   year == now.Year() && month == int(now.Month()),
	}))
}

// statsMonth reads ?year and ?month, defaulting to the current month.
func statsMonth(r *http.Request, now time.Time) (year, month int) {
	year, month = now.Year(), int(now.Month())
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && y > 0 {
		year = y
	}
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	return year, month
}
