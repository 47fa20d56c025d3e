package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/billing"
	"freelance-crm/internal/models"
)

const (
	invoiceSelect = `SELECT i.id, i.user_id, i.client_id, i.project_id, i.number, i.amount, i.status,
	i.due_date, i.description, i.created_at, i.updated_at, c.name, COALESCE(p.name, '')
	FROM invoices i JOIN clients c ON c.id = i.client_id LEFT JOIN projects p ON p.id = i.project_id`
	errInvoiceGone = "invoice not found"

	// maxNumberAttempts bounds the retries when a candidate invoice number is taken.
	maxNumberAttempts = 10
)

func scanInvoice(s rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.Scan(&inv.ID, &inv.UserID, &inv.ClientID, &inv.ProjectID, &inv.Number, &inv.Amount, &inv.Status,
		&inv.DueDate, &inv.Description, &inv.CreatedAt, &inv.UpdatedAt, &inv.ClientName, &inv.ProjectName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errInvoiceGone)
		}
		return nil, err
	}
	return &inv, nil
}

// CreateInvoice inserts an invoice numbered after the user's existing
// invoices and marks the billed time entries and expenses with it, all in one
// transaction. A number taken by a concurrent insert is retried with the next one.
func (db *DB) CreateInvoice(ctx context.Context, userID int64, in models.NewInvoice, marks models.InvoiceMarks) (*models.Invoice, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		inv, err := db.insertInvoice(ctx, userID, in, marks, attempt)
		if err == nil {
			return inv, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, apperrors.Conflict("could not allocate an invoice number")
}

func (db *DB) insertInvoice(ctx context.Context, userID int64, in models.NewInvoice, marks models.InvoiceMarks, skip int) (*models.Invoice, error) {
	status := in.Status
	if status == "" {
		status = models.InvoiceDraft
	}

	var out *models.Invoice
	err := db.withTx(ctx, func(r runner) error {
		if err := r.owns(ctx, "clients", userID, in.ClientID, errClientGone); err != nil {
			return err
		}
		if in.ProjectID != nil {
			if err := r.owns(ctx, "projects", userID, *in.ProjectID, errProjectGone); err != nil {
				return err
			}
		}

		var count int
		if err := r.queryRow(ctx, "SELECT COUNT(*) FROM invoices WHERE user_id = ?", userID).Scan(&count); err != nil {
			return err
		}

		ts := now()
		var id int64
		err := r.queryRow(ctx, `
			INSERT INTO invoices (user_id, client_id, project_id, number, amount, status, due_date, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			userID, in.ClientID, in.ProjectID, billing.InvoiceNumber(count+1+skip), in.Amount, string(status),
			utc(in.DueDate), nullIfEmpty(in.Description), ts, ts,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		if err := r.markBilled(ctx, "time_entries", userID, id, marks.TimeEntryIDs, ts); err != nil {
			return err
		}
		if err := r.markBilled(ctx, "expenses", userID, id, marks.ExpenseIDs, ts); err != nil {
			return err
		}

		out, err = getInvoice(ctx, r, userID, id)
		return err
	})
	return out, err
}

// markBilled attaches rows of table to an invoice. Every row must still be
// unbilled, otherwise the invoice would count it twice.
func (r runner) markBilled(ctx context.Context, table string, userID, invoiceID int64, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, 0, len(ids)+3)
	args = append(args, invoiceID, at, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.exec(ctx,
		"UPDATE "+table+" SET invoice_id = ?, updated_at = ? WHERE user_id = ? AND invoice_id IS NULL AND id IN ("+
			placeholders(len(ids))+")",
		args...,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return apperrors.Conflict("some items were already invoiced")
	}
	return nil
}

func getInvoice(ctx context.Context, r runner, userID, id int64) (*models.Invoice, error) {
	return scanInvoice(r.queryRow(ctx, invoiceSelect+" WHERE i.id = ? AND i.user_id = ?", id, userID))
}

// GetInvoice returns the invoice id if userID owns it.
func (db *DB) GetInvoice(ctx context.Context, userID, id int64) (*models.Invoice, error) {
	return getInvoice(ctx, db.run(), userID, id)
}

// ListInvoices returns the user's invoices, newest first.
func (db *DB) ListInvoices(ctx context.Context, userID int64, f models.InvoiceFilter) ([]models.Invoice, error) {
	query := invoiceSelect + " WHERE i.user_id = ?"
	args := []any{userID}
	if f.ClientID != nil {
		query += " AND i.client_id = ?"
		args = append(args, *f.ClientID)
	}
	if f.ProjectID != nil {
		query += " AND i.project_id = ?"
		args = append(args, *f.ProjectID)
	}
	if f.Status != nil {
		query += " AND i.status = ?"
		args = append(args, string(*f.Status))
	}
	query += " ORDER BY i.created_at DESC, i.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := db.run().query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

// UpdateInvoice applies p to the invoice id owned by userID. Any status may
// follow any other.
func (db *DB) UpdateInvoice(ctx context.Context, userID, id int64, p models.InvoicePatch) (*models.Invoice, error) {
	var a assignments
	if p.ClientID != nil {
		a.set("client_id", *p.ClientID)
	}
	if p.ProjectID != nil {
		a.set("project_id", *p.ProjectID)
	}
	if p.Amount != nil {
		a.set("amount", *p.Amount)
	}
	if p.DueDate != nil {
		a.set("due_date", utc(*p.DueDate))
	}
	if p.Description != nil {
		a.set("description", nullIfEmpty(p.Description))
	}
	if p.Status != nil {
		a.set("status", string(*p.Status))
	}

	var out *models.Invoice
	err := db.withTx(ctx, func(r runner) error {
		if p.ClientID != nil {
			if err := r.owns(ctx, "clients", userID, *p.ClientID, errClientGone); err != nil {
				return err
			}
		}
		if p.ProjectID != nil {
			if err := r.owns(ctx, "projects", userID, *p.ProjectID, errProjectGone); err != nil {
				return err
			}
		}
		if !a.empty() {
			if err := r.update(ctx, "invoices", userID, id, &a, now(), errInvoiceGone); err != nil {
				return err
			}
		}
		inv, err := getInvoice(ctx, r, userID, id)
		out = inv
		return err
	})
	return out, err
}

// UpdateInvoiceStatus sets the status of the invoice id owned by userID.
func (db *DB) UpdateInvoiceStatus(ctx context.Context, userID, id int64, status models.InvoiceStatus) (*models.Invoice, error) {
	return db.UpdateInvoice(ctx, userID, id, models.InvoicePatch{Status: &status})
}

// DeleteInvoice removes the invoice id owned by userID. Time entries and
// expenses it billed become unbilled again.
func (db *DB) DeleteInvoice(ctx context.Context, userID, id int64) error {
	return db.withTx(ctx, func(r runner) error {
		for _, table := range []string{"time_entries", "expenses"} {
			if _, err := r.exec(ctx,
				"UPDATE "+table+" SET invoice_id = NULL WHERE user_id = ? AND invoice_id = ?", userID, id); err != nil {
				return err
			}
		}
		return r.deleteOwned(ctx, "invoices", userID, id, errInvoiceGone)
	})
}

// CountInvoices returns how many invoices userID has.
func (db *DB) CountInvoices(ctx context.Context, userID int64) (int, error) {
	var n int
	err := db.run().queryRow(ctx, "SELECT COUNT(*) FROM invoices WHERE user_id = ?", userID).Scan(&n)
	return n, err
}
