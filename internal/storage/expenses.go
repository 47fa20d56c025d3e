package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/models"
)

const (
	expenseSelect = `SELECT e.id, e.user_id, e.project_id, e.description, e.amount, e.category, e.date,
	e.receipt, e.is_reimbursable, e.is_billable, e.invoice_id, e.created_at, e.updated_at, COALESCE(p.name, '')
	FROM expenses e LEFT JOIN projects p ON p.id = e.project_id`
	errExpenseGone = "expense not found"
)

func scanExpense(s rowScanner) (*models.Expense, error) {
	var e models.Expense
	err := s.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.Description, &e.Amount, &e.Category, &e.Date,
		&e.Receipt, &e.IsReimbursable, &e.IsBillable, &e.InvoiceID, &e.CreatedAt, &e.UpdatedAt, &e.ProjectName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errExpenseGone)
		}
		return nil, err
	}
	return &e, nil
}

// CreateExpense records an expense, optionally against one of the user's projects.
func (db *DB) CreateExpense(ctx context.Context, userID int64, in models.NewExpense) (*models.Expense, error) {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var out *models.Expense
	err := db.withTx(ctx, func(r runner) error {
		if in.ProjectID != nil {
			if err := r.owns(ctx, "projects", userID, *in.ProjectID, errProjectGone); err != nil {
				return err
			}
		}
		ts := now()
		var id int64
		err := r.queryRow(ctx, `
			INSERT INTO expenses (user_id, project_id, description, amount, category, date,
				is_reimbursable, is_billable, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			userID, in.ProjectID, in.Description, in.Amount, in.Category, utc(date),
			in.IsReimbursable, in.IsBillable, ts, ts,
		).Scan(&id)
		if err != nil {
			return err
		}
		out, err = getExpense(ctx, r, userID, id)
		return err
	})
	return out, err
}

func getExpense(ctx context.Context, r runner, userID, id int64) (*models.Expense, error) {
	return scanExpense(r.queryRow(ctx, expenseSelect+" WHERE e.id = ? AND e.user_id = ?", id, userID))
}

// GetExpense returns the expense id if userID owns it.
func (db *DB) GetExpense(ctx context.Context, userID, id int64) (*models.Expense, error) {
	return getExpense(ctx, db.run(), userID, id)
}

// ListExpenses returns the user's expenses, most recent date first.
func (db *DB) ListExpenses(ctx context.Context, userID int64, f models.ExpenseFilter) ([]models.Expense, error) {
	query := expenseSelect + " WHERE e.user_id = ?"
	args := []any{userID}
	if f.ProjectID != nil {
		query += " AND e.project_id = ?"
		args = append(args, *f.ProjectID)
	}
	if f.Billable {
		query += " AND e.is_billable = TRUE"
	}
	if f.Unbilled {
		query += " AND e.invoice_id IS NULL"
	}
	if !f.From.IsZero() {
		query += " AND e.date >= ?"
		args = append(args, utc(f.From))
	}
	if !f.To.IsZero() {
		query += " AND e.date < ?"
		args = append(args, utc(f.To))
	}
	query += " ORDER BY e.date DESC, e.id DESC"

	rows, err := db.run().query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// UpdateExpense applies p to the expense id owned by userID.
func (db *DB) UpdateExpense(ctx context.Context, userID, id int64, p models.ExpensePatch) (*models.Expense, error) {
	var a assignments
	if p.ProjectID != nil {
		a.set("project_id", *p.ProjectID)
	}
	if p.Description != nil {
		a.set("description", *p.Description)
	}
	if p.Amount != nil {
		a.set("amount", *p.Amount)
	}
	if p.Category != nil {
		a.set("category", *p.Category)
	}
	if p.Date != nil {
		a.set("date", utc(*p.Date))
	}
	if p.IsReimbursable != nil {
		a.set("is_reimbursable", *p.IsReimbursable)
	}
	if p.IsBillable != nil {
		a.set("is_billable", *p.IsBillable)
	}

	var out *models.Expense
	err := db.withTx(ctx, func(r runner) error {
		if p.ChangesBilling() {
			cur, err := getExpense(ctx, r, userID, id)
			if err != nil {
				return err
			}
			if cur.Billed() {
				return apperrors.Validation("expense is already invoiced; delete the invoice to change its amount or project")
			}
		}
		if p.ProjectID != nil {
			if err := r.owns(ctx, "projects", userID, *p.ProjectID, errProjectGone); err != nil {
				return err
			}
		}
		if !a.empty() {
			if err := r.update(ctx, "expenses", userID, id, &a, now(), errExpenseGone); err != nil {
				return err
			}
		}
		e, err := getExpense(ctx, r, userID, id)
		out = e
		return err
	})
	return out, err
}

// SetExpenseReceipt stores the receipt reference of an expense and returns
// the reference it replaced, if any.
func (db *DB) SetExpenseReceipt(ctx context.Context, userID, id int64, receipt string) (previous *string, err error) {
	err = db.withTx(ctx, func(r runner) error {
		e, err := getExpense(ctx, r, userID, id)
		if err != nil {
			return err
		}
		previous = e.Receipt
		var a assignments
		a.set("receipt", receipt)
		return r.update(ctx, "expenses", userID, id, &a, now(), errExpenseGone)
	})
	return previous, err
}

// DeleteExpense removes the expense id owned by userID and returns it.
func (db *DB) DeleteExpense(ctx context.Context, userID, id int64) (*models.Expense, error) {
	var out *models.Expense
	err := db.withTx(ctx, func(r runner) error {
		e, err := getExpense(ctx, r, userID, id)
		if err != nil {
			return err
		}
		out = e
		return r.deleteOwned(ctx, "expenses", userID, id, errExpenseGone)
	})
	return out, err
}
