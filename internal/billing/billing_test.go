package billing

import (
	"testing"
	"time"

	"freelance-crm/internal/models"

	"github.com/stretchr/testify/assert"
)

func rate(r float64) *float64 { return &r }

func TestElapsedHours(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    float64
	}{
		{"ninety minutes", 5400 * time.Second, 1.5},
		{"rounds up", 100 * time.Second, 0.03},
		{"rounds down", 10 * time.Second, 0},
		{"full day", 24 * time.Hour, 24},
		{"clock went backwards", -time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ElapsedHours(start, start.Add(tt.elapsed)))
		})
	}
}

func TestTimeAmount(t *testing.T) {
	assert.Equal(t, 0.0, TimeAmount(12, nil))
	assert.Equal(t, 93.75, TimeAmount(1.25, rate(75)))
	assert.Equal(t, 0.3, TimeAmount(0.1, rate(3)))
}

func TestTotalHours(t *testing.T) {
	entries := []models.TimeEntry{{Hours: 0.1}, {Hours: 0.2}, {Hours: 1.15}}
	assert.Equal(t, 1.45, TotalHours(entries))
	assert.Equal(t, 0.0, TotalHours(nil))
}

func TestBillableTotal(t *testing.T) {
	expenses := []models.Expense{
		{Amount: 10, IsBillable: true},
		{Amount: 5.5, IsBillable: true, IsReimbursable: true},
		{Amount: 100, IsBillable: false, IsReimbursable: true},
		{Amount: 7, IsBillable: false},
	}
	assert.Equal(t, 15.5, BillableTotal(expenses))
}

func TestInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", InvoiceNumber(1))
	assert.Equal(t, "INV-0004", InvoiceNumber(4))
	assert.Equal(t, "INV-0123", InvoiceNumber(123))
	assert.Equal(t, "INV-12345", InvoiceNumber(12345))
}

func TestProfitability(t *testing.T) {
	project := &models.Project{ID: 1, Name: "Website", Rate: rate(50)}
	entries := []models.TimeEntry{{Hours: 4}, {Hours: 6}}
	expenses := []models.Expense{
		{Amount: 20, IsBillable: true, IsReimbursable: true},
		{Amount: 15},
	}

	report := Profitability(project, entries, expenses)

	assert.Same(t, project, report.Project)
	assert.Equal(t, 10.0, report.TimeMetrics.TotalHours)
	assert.Equal(t, 500.0, report.TimeMetrics.TimeRevenue)
	assert.Equal(t, 50.0, report.TimeMetrics.HourlyRate)

	assert.Equal(t, 35.0, report.ExpenseMetrics.TotalExpenses)
	assert.Equal(t, 15.0, report.ExpenseMetrics.BusinessExpenses)
	assert.Equal(t, 20.0, report.ExpenseMetrics.ReimbursableExpenses)
	assert.Equal(t, 20.0, report.ExpenseMetrics.BillableExpenses)

	assert.Equal(t, 520.0, report.Profitability.TotalRevenue)
	assert.Equal(t, 15.0, report.Profitability.TotalCosts)
	assert.Equal(t, 505.0, report.Profitability.Profit)
	assert.InDelta(t, 97.12, report.Profitability.ProfitMargin, 0.001)
}

func TestProfitabilityWithoutRevenue(t *testing.T) {
	project := &models.Project{ID: 1, Name: "Pro bono"}
	expenses := []models.Expense{{Amount: 40}}

	report := Profitability(project, []models.TimeEntry{{Hours: 3}}, expenses)

	assert.Equal(t, 0.0, report.TimeMetrics.TimeRevenue)
	assert.Equal(t, 0.0, report.Profitability.TotalRevenue)
	assert.Equal(t, -40.0, report.Profitability.Profit)
	assert.Equal(t, 0.0, report.Profitability.ProfitMargin)
}

func TestSummarizeExpenses(t *testing.T) {
	expenses := []models.Expense{
		{Amount: 120, Category: "Travel", IsReimbursable: true},
		{Amount: 30, Category: "Software", IsBillable: true},
		{Amount: 19.99, Category: "Software"},
	}

	summary := SummarizeExpenses(expenses)

	assert.Equal(t, 169.99, summary.Total)
	assert.Equal(t, 120.0, summary.Reimbursable)
	assert.Equal(t, 30.0, summary.Billable)
	assert.Equal(t, 49.99, summary.BusinessExpenses)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, map[string]float64{"Travel": 120, "Software": 49.99}, summary.ByCategory)

	cats := summary.Categories(expenses)
	if assert.Len(t, cats, 2) {
		assert.Equal(t, CategoryTotal{Category: "Travel", Total: 120, Count: 1}, cats[0])
		assert.Equal(t, CategoryTotal{Category: "Software", Total: 49.99, Count: 2}, cats[1])
	}
}

func TestSummarizeInvoices(t *testing.T) {
	invoices := []models.Invoice{
		{Amount: 100, Status: models.InvoiceDraft},
		{Amount: 250, Status: models.InvoiceSent},
		{Amount: 400, Status: models.InvoicePaid},
		{Amount: 50.5, Status: models.InvoicePaid},
		{Amount: 75, Status: models.InvoiceOverdue},
	}

	stats := SummarizeInvoices(invoices)

	assert.Equal(t, InvoiceStats{
		Total: 5, Draft: 1, Sent: 1, Paid: 2, Overdue: 1,
		TotalAmount: 875.5, PaidAmount: 450.5,
	}, stats)
	assert.Equal(t, 425.0, stats.Outstanding())
}

func TestInvoiceDescriptions(t *testing.T) {
	project := &models.Project{Name: "Website", Rate: rate(62.5)}

	expenses := []models.Expense{
		{Description: "Hosting", Amount: 20},
		{Description: "Fonts", Amount: 4.5},
	}
	assert.Equal(t,
		"Expense reimbursement for Website\nBillable Expenses: 2 items\n- Hosting: $20.00\n- Fonts: $4.50",
		ExpenseInvoiceDescription(project, expenses))

	entries := []models.TimeEntry{{Hours: 2}, {Hours: 1.5}}
	assert.Equal(t,
		"Time tracking invoice for Website\nTotal Hours: 3.50\nRate: $62.5/hr\nPeriod: 2 time entries",
		TimeInvoiceDescription(project, 3.5, entries))
}
