package service

import (
	"context"

	"freelance-crm/internal/billing"
	"freelance-crm/internal/models"
)

// recentInvoices is how many invoices the dashboard lists.
const recentInvoices = 5

// Dashboard is the overview shown after login.
type Dashboard struct {
	ActiveProjects int                  `json:"active_projects"`
	Clients        int                  `json:"clients"`
	RecentInvoices []models.Invoice     `json:"recent_invoices"`
	InvoiceStats   billing.InvoiceStats `json:"invoice_stats"`
	Outstanding    float64              `json:"outstanding"`
	RunningTimer   *models.TimeEntry    `json:"running_timer"`
}

// ExpenseReport is an expense summary with its categories ranked.
type ExpenseReport struct {
	billing.ExpenseSummary
	Categories []billing.CategoryTotal `json:"categories"`
}

// Reports aggregates a user's rows into read-only views.
type Reports struct {
	store Store
}

// NewReports returns a Reports reading from store.
func NewReports(store Store) *Reports {
	return &Reports{store: store}
}

// Profitability combines logged time, expenses and the project rate into a profit report.
func (s *Reports) Profitability(ctx context.Context, userID, projectID int64) (*billing.ProfitabilityReport, error) {
	project, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListTimeEntries(ctx, userID, models.TimeEntryFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, userID, models.ExpenseFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	report := billing.Profitability(project, entries, expenses)
	return &report, nil
}

// ExpenseSummary summarises the user's expenses matching f.
func (s *Reports) ExpenseSummary(ctx context.Context, userID int64, f models.ExpenseFilter) (*ExpenseReport, error) {
	expenses, err := s.store.ListExpenses(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	summary := billing.SummarizeExpenses(expenses)
	return &ExpenseReport{ExpenseSummary: summary, Categories: summary.Categories(expenses)}, nil
}

// ExpensesByProject lists the expenses of a project the user owns.
func (s *Reports) ExpensesByProject(ctx context.Context, userID, projectID int64) ([]models.Expense, error) {
	if _, err := s.store.GetProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.store.ListExpenses(ctx, userID, models.ExpenseFilter{ProjectID: &projectID})
}

// InvoiceStats summarizes every invoice of the user.
func (s *Reports) InvoiceStats(ctx context.Context, userID int64) (billing.InvoiceStats, error) {
	invoices, err := s.store.ListInvoices(ctx, userID, models.InvoiceFilter{})
	if err != nil {
		return billing.InvoiceStats{}, err
	}
	return billing.SummarizeInvoices(invoices), nil
}

// TotalHours sums all hours logged on a project the user owns.
func (s *Reports) TotalHours(ctx context.Context, userID, projectID int64) (float64, error) {
	if _, err := s.store.GetProject(ctx, userID, projectID); err != nil {
		return 0, err
	}
	return s.store.TotalHours(ctx, userID, projectID)
}

// Dashboard gathers the counts and recent activity shown on the home page.
func (s *Reports) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	active, err := s.store.CountProjects(ctx, userID, models.ProjectActive)
	if err != nil {
		return nil, err
	}
	clients, err := s.store.CountClients(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.InvoiceStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.ListInvoices(ctx, userID, models.InvoiceFilter{Limit: recentInvoices})
	if err != nil {
		return nil, err
	}
	running, err := s.store.GetRunningTimer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		ActiveProjects: active,
		Clients:        clients,
		RecentInvoices: recent,
		InvoiceStats:   stats,
		Outstanding:    stats.Outstanding(),
		RunningTimer:   running,
	}, nil
}
