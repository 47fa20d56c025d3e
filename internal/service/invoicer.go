package service

import (
	"context"
	"strings"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/billing"
	"freelance-crm/internal/models"

	"go.uber.org/zap"
)

// UnbilledTime is the stopped, not yet invoiced time of a project.
type UnbilledTime struct {
	Project     *models.Project    `json:"project"`
	Entries     []models.TimeEntry `json:"entries"`
	TotalHours  float64            `json:"total_hours"`
	TotalAmount float64            `json:"total_amount"`
}

// BillableExpenses are the billable, not yet invoiced expenses of a project.
type BillableExpenses struct {
	Project  *models.Project  `json:"project"`
	Expenses []models.Expense `json:"expenses"`
	Total    float64          `json:"total"`
}

// Invoicer creates invoices, by hand or from a project's unbilled work.
type Invoicer struct {
	store Store
	log   *zap.Logger
}

// NewInvoicer returns an Invoicer backed by store.
func NewInvoicer(store Store, log *zap.Logger) *Invoicer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoicer{store: store, log: log}
}

// Create validates and stores a manual invoice.
func (s *Invoicer) Create(ctx context.Context, userID int64, in models.NewInvoice) (*models.Invoice, error) {
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	inv, err := s.store.CreateInvoice(ctx, userID, in, models.InvoiceMarks{})
	if err != nil {
		return nil, err
	}
	s.logCreated(userID, inv, "manual")
	return inv, nil
}

// UnbilledTime lists the stopped, uninvoiced entries of a project and what they are worth.
func (s *Invoicer) UnbilledTime(ctx context.Context, userID, projectID int64) (*UnbilledTime, error) {
	project, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListTimeEntries(ctx, userID, models.TimeEntryFilter{ProjectID: &projectID, Unbilled: true})
	if err != nil {
		return nil, err
	}
	hours := billing.TotalHours(entries)
	return &UnbilledTime{
		Project:     project,
		Entries:     entries,
		TotalHours:  hours,
		TotalAmount: billing.TimeAmount(hours, project.Rate),
	}, nil
}

// BillableExpenses lists the billable expenses of a project not yet on an invoice.
func (s *Invoicer) BillableExpenses(ctx context.Context, userID, projectID int64) (*BillableExpenses, error) {
	project, err := s.store.GetProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpenses(ctx, userID, models.ExpenseFilter{ProjectID: &projectID, Billable: true, Unbilled: true})
	if err != nil {
		return nil, err
	}
	return &BillableExpenses{
		Project:  project,
		Expenses: expenses,
		Total:    billing.BillableTotal(expenses),
	}, nil
}

// CreateFromTime invoices the project's unbilled hours at its rate and marks
// the entries as billed.
func (s *Invoicer) CreateFromTime(ctx context.Context, userID int64, req models.DeriveRequest) (*models.Invoice, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	unbilled, err := s.UnbilledTime(ctx, userID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(unbilled.Entries) == 0 {
		return nil, apperrors.Validation("no unbilled time entries found for this project")
	}
	if unbilled.TotalAmount <= 0 {
		return nil, apperrors.Validation("unbilled time amounts to zero; set an hourly rate on the project")
	}

	marks := models.InvoiceMarks{TimeEntryIDs: make([]int64, 0, len(unbilled.Entries))}
	for _, e := range unbilled.Entries {
		marks.TimeEntryIDs = append(marks.TimeEntryIDs, e.ID)
	}
	description := billing.TimeInvoiceDescription(unbilled.Project, unbilled.TotalHours, unbilled.Entries)

	inv, err := s.store.CreateInvoice(ctx, userID, deriveInvoice(unbilled.Project, unbilled.TotalAmount, req, description), marks)
	if err != nil {
		return nil, err
	}
	s.logCreated(userID, inv, "time")
	return inv, nil
}

// CreateFromExpenses invoices the project's unbilled billable expenses and
// marks them as billed.
func (s *Invoicer) CreateFromExpenses(ctx context.Context, userID int64, req models.DeriveRequest) (*models.Invoice, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}
	billable, err := s.BillableExpenses(ctx, userID, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(billable.Expenses) == 0 {
		return nil, apperrors.Validation("no billable expenses found for this project")
	}

	marks := models.InvoiceMarks{ExpenseIDs: make([]int64, 0, len(billable.Expenses))}
	for _, e := range billable.Expenses {
		marks.ExpenseIDs = append(marks.ExpenseIDs, e.ID)
	}
	description := billing.ExpenseInvoiceDescription(billable.Project, billable.Expenses)

	inv, err := s.store.CreateInvoice(ctx, userID, deriveInvoice(billable.Project, billable.Total, req, description), marks)
	if err != nil {
		return nil, err
	}
	s.logCreated(userID, inv, "expenses")
	return inv, nil
}

// UpdateStatus moves an invoice to any status.
func (s *Invoicer) UpdateStatus(ctx context.Context, userID, id int64, status models.InvoiceStatus) (*models.Invoice, error) {
	if !status.Valid() {
		names := make([]string, len(models.InvoiceStatuses))
		for i, st := range models.InvoiceStatuses {
			names[i] = string(st)
		}
		return nil, apperrors.Validationf("status must be one of: %s", strings.Join(names, ", "))
	}
	return s.store.UpdateInvoiceStatus(ctx, userID, id, status)
}

func deriveInvoice(project *models.Project, amount float64, req models.DeriveRequest, description string) models.NewInvoice {
	return models.NewInvoice{
		ClientID:    project.ClientID,
		ProjectID:   &project.ID,
		Amount:      amount,
		DueDate:     req.DueDate,
		Description: &description,
		Status:      models.InvoiceDraft,
	}
}

func (s *Invoicer) logCreated(userID int64, inv *models.Invoice, source string) {
	s.log.Info("invoice created",
		zap.Int64("user_id", userID),
		zap.String("number", inv.Number),
		zap.Float64("amount", inv.Amount),
		zap.String("source", source),
	)
}
