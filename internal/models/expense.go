package models

import "time"

// ExpenseCategories lists the accepted expense categories in display order.
var ExpenseCategories = []string{
	"Travel",
	"Software",
	"Hardware",
	"Materials",
	"Meals",
	"Office Supplies",
	"Professional Services",
	"Marketing",
	"Training",
	"Other",
}

// IsExpenseCategory reports whether c is one of ExpenseCategories.
func IsExpenseCategory(c string) bool {
	for _, known := range ExpenseCategories {
		if known == c {
			return true
		}
	}
	return false
}

// Expense represents a cost, optionally tied to a project.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProjectID   *int64    `json:"project_id,omitempty"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	// Receipt is the key of the uploaded receipt file, set only by uploads.
	Receipt        *string   `json:"receipt,omitempty"`
	IsReimbursable bool      `json:"is_reimbursable"`
	IsBillable     bool      `json:"is_billable"`
	InvoiceID      *int64    `json:"invoice_id,omitempty"`
	ProjectName    string    `json:"project_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Billed reports whether the expense has been included in an invoice.
func (e *Expense) Billed() bool {
	return e.InvoiceID != nil
}

// NewExpense holds the fields accepted when recording an expense.
// A zero Date means now.
type NewExpense struct {
	ProjectID      *int64    `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	Description    string    `json:"description" validate:"required,max=500"`
	Amount         float64   `json:"amount" validate:"finite,gte=0.01"`
	Category       string    `json:"category" validate:"required,expense_category"`
	Date           time.Time `json:"date"`
	IsReimbursable bool      `json:"is_reimbursable"`
	IsBillable     bool      `json:"is_billable"`
}

// ExpensePatch lists the expense fields to change. Nil fields are left untouched.
type ExpensePatch struct {
	ProjectID      *int64     `json:"project_id,omitempty" validate:"omitempty,gt=0"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	Amount         *float64   `json:"amount,omitempty" validate:"omitempty,finite,gte=0.01"`
	Category       *string    `json:"category,omitempty" validate:"omitempty,expense_category"`
	Date           *time.Time `json:"date,omitempty"`
	IsReimbursable *bool      `json:"is_reimbursable,omitempty"`
	IsBillable     *bool      `json:"is_billable,omitempty"`
}

func (p ExpensePatch) Empty() bool {
	return p.ProjectID == nil && p.Description == nil && p.Amount == nil && p.Category == nil &&
		p.Date == nil && p.IsReimbursable == nil && p.IsBillable == nil
}

// ChangesBilling reports whether the patch touches fields an invoice was built from.
func (p ExpensePatch) ChangesBilling() bool {
	return p.ProjectID != nil || p.Amount != nil || p.IsBillable != nil
}

// ExpenseFilter narrows an expense listing.
type ExpenseFilter struct {
	ProjectID *int64
	Billable  bool
	// Unbilled keeps only expenses that are not on an invoice yet.
	Unbilled bool
	// From and To bound the expense date to [From, To). Zero means unbounded.
	From time.Time
	To   time.Time
}
