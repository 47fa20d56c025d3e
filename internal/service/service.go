// Package service holds the operations that span several rows: the timer,
// invoice derivation and reports. Plain CRUD goes straight to storage.
package service

import (
	"context"
	"time"

	"freelance-crm/internal/models"
)

// Store is the subset of storage.DB the services need.
type Store interface {
	GetProject(ctx context.Context, userID, id int64) (*models.Project, error)
	ListTimeEntries(ctx context.Context, userID int64, f models.TimeEntryFilter) ([]models.TimeEntry, error)
	ListExpenses(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error)
	ListInvoices(ctx context.Context, userID int64, f models.InvoiceFilter) ([]models.Invoice, error)
	CreateInvoice(ctx context.Context, userID int64, in models.NewInvoice, marks models.InvoiceMarks) (*models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, userID, id int64, status models.InvoiceStatus) (*models.Invoice, error)
	TotalHours(ctx context.Context, userID, projectID int64) (float64, error)
	CountProjects(ctx context.Context, userID int64, status models.ProjectStatus) (int, error)
	CountClients(ctx context.Context, userID int64) (int, error)

	StartTimer(ctx context.Context, userID int64, in models.TimerStart, at time.Time,
		preempt func(running *models.TimeEntry) float64) (started, stopped *models.TimeEntry, err error)
	StopTimer(ctx context.Context, userID, id int64, at time.Time, hours func(start time.Time) float64) (*models.TimeEntry, error)
	GetRunningTimer(ctx context.Context, userID int64) (*models.TimeEntry, error)
}
