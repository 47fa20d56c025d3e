package storage

import (
	"context"
	"database/sql"
	"errors"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/models"
)

const (
	clientColumns  = "id, user_id, name, email, company, phone, address, created_at, updated_at"
	errClientGone  = "client not found"
	errProjectGone = "project not found"
)

func scanClient(s rowScanner) (*models.Client, error) {
	var c models.Client
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Company, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errClientGone)
		}
		return nil, err
	}
	return &c, nil
}

// CreateClient inserts a client owned by userID.
func (db *DB) CreateClient(ctx context.Context, userID int64, in models.NewClient) (*models.Client, error) {
	ts := now()
	c := &models.Client{
		UserID:    userID,
		Name:      in.Name,
		Email:     in.Email,
		Company:   nullIfEmpty(in.Company),
		Phone:     nullIfEmpty(in.Phone),
		Address:   nullIfEmpty(in.Address),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	err := db.run().queryRow(ctx, `
		INSERT INTO clients (user_id, name, email, company, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		c.UserID, c.Name, c.Email, c.Company, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func getClient(ctx context.Context, r runner, userID, id int64) (*models.Client, error) {
	return scanClient(r.queryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = ? AND user_id = ?", id, userID))
}

// GetClient returns the client id if userID owns it.
func (db *DB) GetClient(ctx context.Context, userID, id int64) (*models.Client, error) {
	return getClient(ctx, db.run(), userID, id)
}

// GetClientDetail returns a client with its projects and invoices.
func (db *DB) GetClientDetail(ctx context.Context, userID, id int64) (*models.ClientDetail, error) {
	c, err := db.GetClient(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	projects, err := db.ListProjects(ctx, userID, models.ProjectFilter{ClientID: &id})
	if err != nil {
		return nil, err
	}
	invoices, err := db.ListInvoices(ctx, userID, models.InvoiceFilter{ClientID: &id})
	if err != nil {
		return nil, err
	}
	return &models.ClientDetail{Client: *c, Projects: projects, Invoices: invoices}, nil
}

// ListClients returns the user's clients, newest first.
func (db *DB) ListClients(ctx context.Context, userID int64) ([]models.Client, error) {
	rows, err := db.run().query(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// UpdateClient applies p to the client id owned by userID.
func (db *DB) UpdateClient(ctx context.Context, userID, id int64, p models.ClientPatch) (*models.Client, error) {
	var a assignments
	if p.Name != nil {
		a.set("name", *p.Name)
	}
	if p.Email != nil {
		a.set("email", *p.Email)
	}
	if p.Company != nil {
		a.set("company", nullIfEmpty(p.Company))
	}
	if p.Phone != nil {
		a.set("phone", nullIfEmpty(p.Phone))
	}
	if p.Address != nil {
		a.set("address", nullIfEmpty(p.Address))
	}

	var out *models.Client
	err := db.withTx(ctx, func(r runner) error {
		if !a.empty() {
			if err := r.update(ctx, "clients", userID, id, &a, now(), errClientGone); err != nil {
				return err
			}
		}
		c, err := getClient(ctx, r, userID, id)
		out = c
		return err
	})
	return out, err
}

// DeleteClient removes the client id owned by userID together with its
// projects and invoices.
func (db *DB) DeleteClient(ctx context.Context, userID, id int64) error {
	return db.run().deleteOwned(ctx, "clients", userID, id, errClientGone)
}

// CountClients returns how many clients userID has.
func (db *DB) CountClients(ctx context.Context, userID int64) (int, error) {
	var n int
	err := db.run().queryRow(ctx, "SELECT COUNT(*) FROM clients WHERE user_id = ?", userID).Scan(&n)
	return n, err
}
