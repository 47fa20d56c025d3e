package models

import "time"

// TimeEntry is either a manually logged block of hours or a timer run.
// A running timer has IsRunning set, a StartTime and zero Hours.
type TimeEntry struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ProjectID   int64      `json:"project_id"`
	Description *string    `json:"description,omitempty"`
	Hours       float64    `json:"hours"`
	Date        time.Time  `json:"date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	IsRunning   bool       `json:"is_running"`
	InvoiceID   *int64     `json:"invoice_id,omitempty"`
	ProjectName string     `json:"project_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Billed reports whether the entry has been included in an invoice.
func (e *TimeEntry) Billed() bool {
	return e.InvoiceID != nil
}

// NewTimeEntry holds the fields accepted when logging time by hand.
// A zero Date means now.
type NewTimeEntry struct {
	ProjectID   int64     `json:"project_id" validate:"required,gt=0"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Hours       float64   `json:"hours" validate:"finite,gte=0.01"`
	Date        time.Time `json:"date"`
}

// TimeEntryPatch lists the time entry fields to change. Nil fields are left untouched.
type TimeEntryPatch struct {
	ProjectID   *int64     `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Hours       *float64   `json:"hours,omitempty" validate:"omitempty,finite,gte=0.01"`
	Date        *time.Time `json:"date,omitempty"`
}

func (p TimeEntryPatch) Empty() bool {
	return p.ProjectID == nil && p.Description == nil && p.Hours == nil && p.Date == nil
}

// ChangesBilling reports whether the patch touches fields an invoice was built from.
func (p TimeEntryPatch) ChangesBilling() bool {
	return p.ProjectID != nil || p.Hours != nil
}

// TimerStart is the request to start a timer on a project.
type TimerStart struct {
	ProjectID   int64   `json:"project_id" validate:"required,gt=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// TimeEntryFilter narrows a time entry listing.
type TimeEntryFilter struct {
	ProjectID *int64
	// Unbilled keeps only stopped entries that are not on an invoice yet.
	Unbilled bool
}
