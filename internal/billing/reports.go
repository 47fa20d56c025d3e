package billing

import (
	"sort"

	"freelance-crm/internal/models"

	"github.com/shopspring/decimal"
)

// TimeMetrics is the time side of a profitability report.
type TimeMetrics struct {
	TotalHours  float64 `json:"total_hours"`
	TimeRevenue float64 `json:"time_revenue"`
	HourlyRate  float64 `json:"hourly_rate"`
}

// ExpenseMetrics splits project expenses by how they are paid back.
type ExpenseMetrics struct {
	TotalExpenses        float64 `json:"total_expenses"`
	BusinessExpenses     float64 `json:"business_expenses"`
	ReimbursableExpenses float64 `json:"reimbursable_expenses"`
	BillableExpenses     float64 `json:"billable_expenses"`
}

// ProfitMetrics is revenue minus costs. ProfitMargin is a percentage of revenue.
type ProfitMetrics struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalCosts   float64 `json:"total_costs"`
	Profit       float64 `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
}

// ProfitabilityReport is the revenue and cost breakdown of one project.
type ProfitabilityReport struct {
	Project        *models.Project `json:"project"`
	TimeMetrics    TimeMetrics     `json:"time_metrics"`
	ExpenseMetrics ExpenseMetrics  `json:"expense_metrics"`
	Profitability  ProfitMetrics   `json:"profitability"`
}

// Profitability derives revenue from tracked hours and billable expenses and
// costs from expenses that are not reimbursable.
func Profitability(project *models.Project, entries []models.TimeEntry, expenses []models.Expense) ProfitabilityReport {
	rate := decimal.Zero
	if project.Rate != nil {
		rate = decimal.NewFromFloat(*project.Rate)
	}

	hours := decimal.Zero
	for _, e := range entries {
		hours = hours.Add(decimal.NewFromFloat(e.Hours))
	}
	timeRevenue := hours.Mul(rate)

	var total, business, reimbursable, billable decimal.Decimal
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		if e.IsReimbursable {
			reimbursable = reimbursable.Add(amount)
		} else {
			business = business.Add(amount)
		}
		if e.IsBillable {
			billable = billable.Add(amount)
		}
	}

	revenue := timeRevenue.Add(billable)
	costs := business
	profit := revenue.Sub(costs)
	margin := decimal.Zero
	if !revenue.IsZero() {
		margin = profit.Div(revenue).Mul(hundred)
	}

	return ProfitabilityReport{
		Project: project,
		TimeMetrics: TimeMetrics{
			TotalHours:  hours.Round(2).InexactFloat64(),
			TimeRevenue: timeRevenue.Round(2).InexactFloat64(),
			HourlyRate:  rate.InexactFloat64(),
		},
		ExpenseMetrics: ExpenseMetrics{
			TotalExpenses:        total.Round(2).InexactFloat64(),
			BusinessExpenses:     business.Round(2).InexactFloat64(),
			ReimbursableExpenses: reimbursable.Round(2).InexactFloat64(),
			BillableExpenses:     billable.Round(2).InexactFloat64(),
		},
		Profitability: ProfitMetrics{
			TotalRevenue: revenue.Round(2).InexactFloat64(),
			TotalCosts:   costs.Round(2).InexactFloat64(),
			Profit:       profit.Round(2).InexactFloat64(),
			ProfitMargin: margin.Round(2).InexactFloat64(),
		},
	}
}

// CategoryTotal is the spend of one expense category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

// ExpenseSummary splits a set of expenses by flag and category.
type ExpenseSummary struct {
	Total            float64            `json:"total"`
	Reimbursable     float64            `json:"reimbursable"`
	Billable         float64            `json:"billable"`
	BusinessExpenses float64            `json:"business_expenses"`
	Count            int                `json:"count"`
	ByCategory       map[string]float64 `json:"by_category"`
}

// Categories returns the per-category totals, largest first.
func (s ExpenseSummary) Categories(expenses []models.Expense) []CategoryTotal {
	counts := make(map[string]int, len(s.ByCategory))
	for _, e := range expenses {
		counts[e.Category]++
	}
	out := make([]CategoryTotal, 0, len(s.ByCategory))
	for c, total := range s.ByCategory {
		out = append(out, CategoryTotal{Category: c, Total: total, Count: counts[c]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total == out[j].Total {
			return out[i].Category < out[j].Category
		}
		return out[i].Total > out[j].Total
	})
	return out
}

// SummarizeExpenses totals expenses overall and per category.
func SummarizeExpenses(expenses []models.Expense) ExpenseSummary {
	var total, reimbursable, billable, business decimal.Decimal
	byCategory := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		amount := decimal.NewFromFloat(e.Amount)
		total = total.Add(amount)
		if e.IsReimbursable {
			reimbursable = reimbursable.Add(amount)
		} else {
			business = business.Add(amount)
		}
		if e.IsBillable {
			billable = billable.Add(amount)
		}
		byCategory[e.Category] = byCategory[e.Category].Add(amount)
	}

	summary := ExpenseSummary{
		Total:            total.Round(2).InexactFloat64(),
		Reimbursable:     reimbursable.Round(2).InexactFloat64(),
		Billable:         billable.Round(2).InexactFloat64(),
		BusinessExpenses: business.Round(2).InexactFloat64(),
		Count:            len(expenses),
		ByCategory:       make(map[string]float64, len(byCategory)),
	}
	for c, v := range byCategory {
		summary.ByCategory[c] = v.Round(2).InexactFloat64()
	}
	return summary
}

// InvoiceStats counts invoices per status. PaidAmount only includes paid invoices.
type InvoiceStats struct {
	Total       int     `json:"total"`
	Draft       int     `json:"draft"`
	Sent        int     `json:"sent"`
	Paid        int     `json:"paid"`
	Overdue     int     `json:"overdue"`
	TotalAmount float64 `json:"total_amount"`
	PaidAmount  float64 `json:"paid_amount"`
}

// Outstanding is the amount invoiced but not yet paid.
func (s InvoiceStats) Outstanding() float64 {
	return decimal.NewFromFloat(s.TotalAmount).Sub(decimal.NewFromFloat(s.PaidAmount)).Round(2).InexactFloat64()
}

// SummarizeInvoices counts invoices by status and totals their amounts.
func SummarizeInvoices(invoices []models.Invoice) InvoiceStats {
	var total, paid decimal.Decimal
	stats := InvoiceStats{Total: len(invoices)}
	for _, inv := range invoices {
		amount := decimal.NewFromFloat(inv.Amount)
		total = total.Add(amount)
		switch inv.Status {
		case models.InvoiceDraft:
			stats.Draft++
		case models.InvoiceSent:
			stats.Sent++
		case models.InvoicePaid:
			stats.Paid++
			paid = paid.Add(amount)
		case models.InvoiceOverdue:
			stats.Overdue++
		}
	}
	stats.TotalAmount = total.Round(2).InexactFloat64()
	stats.PaidAmount = paid.Round(2).InexactFloat64()
	return stats
}
