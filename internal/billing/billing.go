// Package billing holds the arithmetic behind timers, invoices and project
// profitability. Every function is pure; callers load the rows.
package billing

import (
	"fmt"
	"strings"
	"time"

	"freelance-crm/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ElapsedHours returns the hours between start and end rounded to two
// decimals. An end before start yields 0.
func ElapsedHours(start, end time.Time) float64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	hours := decimal.NewFromInt(d.Milliseconds()).Div(decimal.NewFromInt(time.Hour.Milliseconds()))
	return hours.Round(2).InexactFloat64()
}

// TotalHours sums the hours of entries.
func TotalHours(entries []models.TimeEntry) float64 {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Hours))
	}
	return total.Round(2).InexactFloat64()
}

// TimeAmount prices hours at rate. A nil rate prices at zero.
func TimeAmount(hours float64, rate *float64) float64 {
	if rate == nil {
		return 0
	}
	return decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(*rate)).Round(2).InexactFloat64()
}

// BillableTotal sums the amounts of billable expenses. Reimbursable has no effect.
func BillableTotal(expenses []models.Expense) float64 {
	total := decimal.Zero
	for _, e := range expenses {
		if e.IsBillable {
			total = total.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return total.Round(2).InexactFloat64()
}

// InvoiceNumber formats the seq'th invoice number of a user.
func InvoiceNumber(seq int) string {
	return fmt.Sprintf("INV-%04d", seq)
}

// ExpenseInvoiceDescription itemises billable expenses for an invoice body.
func ExpenseInvoiceDescription(project *models.Project, expenses []models.Expense) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expense reimbursement for %s\n", project.Name)
	fmt.Fprintf(&b, "Billable Expenses: %d items\n", len(expenses))
	for i, e := range expenses {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- %s: $%.2f", e.Description, e.Amount)
	}
	return b.String()
}

// TimeInvoiceDescription summarises tracked time for an invoice body.
func TimeInvoiceDescription(project *models.Project, totalHours float64, entries []models.TimeEntry) string {
	rate := 0.0
	if project.Rate != nil {
		rate = *project.Rate
	}
	return fmt.Sprintf("Time tracking invoice for %s\nTotal Hours: %.2f\nRate: $%s/hr\nPeriod: %d time entries",
		project.Name, totalHours, decimal.NewFromFloat(rate).String(), len(entries))
}
