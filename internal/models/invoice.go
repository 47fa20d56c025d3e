package models

import "time"

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses lists the statuses in lifecycle order.
var InvoiceStatuses = []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue}

// Valid reports whether s is a known status.
func (s InvoiceStatus) Valid() bool {
	for _, known := range InvoiceStatuses {
		if known == s {
			return true
		}
	}
	return false
}

// Invoice is a bill sent to a client. Number is unique per user.
type Invoice struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	ClientID    int64         `json:"client_id"`
	ProjectID   *int64        `json:"project_id,omitempty"`
	Number      string        `json:"number"`
	Amount      float64       `json:"amount"`
	Status      InvoiceStatus `json:"status"`
	DueDate     time.Time     `json:"due_date"`
	Description *string       `json:"description,omitempty"`
	ClientName  string        `json:"client_name,omitempty"`
	ProjectName string        `json:"project_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewInvoice holds the fields accepted when creating an invoice.
type NewInvoice struct {
	ClientID    int64         `json:"client_id" validate:"required,gt=0"`
	ProjectID   *int64        `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	Amount      float64       `json:"amount" validate:"finite,gt=0"`
	DueDate     time.Time     `json:"due_date" validate:"required"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      InvoiceStatus `json:"status,omitempty" validate:"omitempty,oneof=draft sent paid overdue"`
}

// InvoicePatch lists the invoice fields to change. Nil fields are left untouched.
type InvoicePatch struct {
	ClientID    *int64         `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	ProjectID   *int64         `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	Amount      *float64       `json:"amount,omitempty" validate:"omitempty,finite,gt=0"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	Status      *InvoiceStatus `json:"status,omitempty" validate:"omitempty,oneof=draft sent paid overdue"`
}

func (p InvoicePatch) Empty() bool {
	return p.ClientID == nil && p.ProjectID == nil && p.Amount == nil && p.DueDate == nil &&
		p.Description == nil && p.Status == nil
}

// InvoiceMarks lists the time entries and expenses an invoice bills.
type InvoiceMarks struct {
	TimeEntryIDs []int64
	ExpenseIDs   []int64
}

// DeriveRequest asks for an invoice built from a project's unbilled work.
type DeriveRequest struct {
	ProjectID int64     `json:"project_id" validate:"required,gt=0"`
	DueDate   time.Time `json:"due_date" validate:"required"`
}

// InvoiceFilter narrows an invoice listing. Limit 0 means no limit.
type InvoiceFilter struct {
	ClientID  *int64
	ProjectID *int64
	Status    *InvoiceStatus
	Limit     int
}
