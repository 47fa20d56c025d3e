package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"freelance-crm/internal/models"
	"freelance-crm/internal/service"
)

// CategoryStyle defines the visual style for a category.
type CategoryStyle struct {
	Icon  string
	Color string
}

var categoryStyles = map[string]CategoryStyle{
	"Travel":                {"✈️", "#60a5fa"},
	"Software":              {"💾", "#a78bfa"},
	"Hardware":              {"🖥️", "#818cf8"},
	"Materials":             {"🧱", "#f59e0b"},
	"Meals":                 {"🍽️", "#f472b6"},
	"Office Supplies":       {"📎", "#fbbf24"},
	"Professional Services": {"💼", "#34d399"},
	"Marketing":             {"📣", "#fb7185"},
	"Training":              {"🎓", "#2dd4bf"},
}

func getCategoryStyle(category string) CategoryStyle {
	if s, ok := categoryStyles[category]; ok {
		return s
	}
	return CategoryStyle{Icon: "📦", Color: "#94a3b8"}
}

// ExpenseItem represents an expense in the list view.
type ExpenseItem struct {
	models.Expense
	CategoryStyle CategoryStyle
}

// ExpenseGroup groups expenses by date.
type ExpenseGroup struct {
	Title string
	Date  string
	Total float64
	Items []ExpenseItem
}

// ExpensesViewModel is the data passed to the expenses template.
type ExpensesViewModel struct {
	Summary    *service.ExpenseReport
	Groups     []ExpenseGroup
	Projects   []models.Project
	Categories []string
	Receipts   bool
}

// ListExpenses renders the expenses grouped by day.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	projectID, err := queryID(r, "project_id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	f := models.ExpenseFilter{ProjectID: projectID}
	expenses, err := h.db.ListExpenses(r.Context(), user.ID, f)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	summary, err := h.reports.ExpenseSummary(r.Context(), user.ID, f)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	projects, err := h.db.ListProjects(r.Context(), user.ID, models.ProjectFilter{})
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "expenses.html", h.page(r, "Expenses", "expenses", ExpensesViewModel{
		Summary:    summary,
		Groups:     groupExpenses(expenses, time.Now()),
		Projects:   projects,
		Categories: models.ExpenseCategories,
		Receipts:   h.receipts != nil,
	}))
}

func groupExpenses(expenses []models.Expense, now time.Time) []ExpenseGroup {
	groupsMap := make(map[string]*ExpenseGroup)
	for _, e := range expenses {
		day := e.Date.Local()
		dateStr := day.Format(formDate)
		if _, ok := groupsMap[dateStr]; !ok {
			groupsMap[dateStr] = &ExpenseGroup{Date: dateStr, Title: formatGroupTitle(day, now)}
		}
		group := groupsMap[dateStr]
		group.Total += e.Amount
		group.Items = append(group.Items, ExpenseItem{Expense: e, CategoryStyle: getCategoryStyle(e.Category)})
	}

	groups := make([]ExpenseGroup, 0, len(groupsMap))
	for _, g := range groupsMap {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Date > groups[j].Date })
	return groups
}

func formatGroupTitle(date, now time.Time) string {
	dateStr := date.Format(formDate)
	if dateStr == now.Format(formDate) {
		return "TODAY"
	}
	if dateStr == now.AddDate(0, 0, -1).Format(formDate) {
		return "YESTERDAY"
	}
	return strings.ToUpper(date.Format("Mon, 02 Jan '06"))
}

// CreateExpense records an expense from a multipart form with an optional receipt.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.parseUpload(w, r); err != nil {
		h.plainError(w, r, err)
		return
	}
	in, err := parseExpenseForm(r)
	if err == nil {
		err = models.Validate(in)
	}
	if err != nil {
		h.plainError(w, r, err)
		return
	}

	file, filename, err := uploadedReceipt(r)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if file != nil {
		defer file.Close()
		if h.receipts == nil {
			h.plainError(w, r, errReceiptsDisabled)
			return
		}
	}

	user := GetUserFromContext(r)
	expense, err := h.db.CreateExpense(r.Context(), user.ID, in)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if file != nil {
		if _, err := h.storeReceipt(r.Context(), user.ID, expense.ID, filename, file); err != nil {
			h.plainError(w, r, err)
			return
		}
	}
	redirect(w, r, "/expenses")
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	expense, err := h.db.DeleteExpense(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if expense.Receipt != nil {
		h.dropReceipt(r.Context(), *expense.Receipt)
	}
	redirect(w, r, "/expenses")
}

// UploadReceipt attaches or replaces the receipt of an expense.
func (h *Handlers) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := h.parseUpload(w, r); err != nil {
		h.plainError(w, r, err)
		return
	}
	file, filename, err := uploadedReceipt(r)
	if err == nil && file == nil {
		err = errMissingReceipt
	}
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	defer file.Close()
	if _, err := h.storeReceipt(r.Context(), GetUserFromContext(r).ID, id, filename, file); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/expenses")
}

// DownloadReceipt streams the receipt of an expense.
func (h *Handlers) DownloadReceipt(w http.ResponseWriter, r *http.Request) {
	if err := h.serveReceipt(w, r); err != nil {
		h.plainError(w, r, err)
	}
}
