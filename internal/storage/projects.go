package storage

import (
	"context"
	"database/sql"
	"errors"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/models"
)

const projectSelect = `SELECT p.id, p.user_id, p.client_id, p.name, p.description, p.status, p.rate,
	p.created_at, p.updated_at, c.name
	FROM projects p JOIN clients c ON c.id = p.client_id`

func scanProject(s rowScanner) (*models.Project, error) {
	var p models.Project
	err := s.Scan(&p.ID, &p.UserID, &p.ClientID, &p.Name, &p.Description, &p.Status, &p.Rate,
		&p.CreatedAt, &p.UpdatedAt, &p.ClientName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(errProjectGone)
		}
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project for one of the user's clients.
func (db *DB) CreateProject(ctx context.Context, userID int64, in models.NewProject) (*models.Project, error) {
	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}

	var out *models.Project
	err := db.withTx(ctx, func(r runner) error {
		if err := r.owns(ctx, "clients", userID, in.ClientID, errClientGone); err != nil {
			return err
		}
		ts := now()
		var id int64
		err := r.queryRow(ctx, `
			INSERT INTO projects (user_id, client_id, name, description, status, rate, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			userID, in.ClientID, in.Name, nullIfEmpty(in.Description), string(status), in.Rate, ts, ts,
		).Scan(&id)
		if err != nil {
			return err
		}
		out, err = getProject(ctx, r, userID, id)
		return err
	})
	return out, err
}

func getProject(ctx context.Context, r runner, userID, id int64) (*models.Project, error) {
	return scanProject(r.queryRow(ctx, projectSelect+" WHERE p.id = ? AND p.user_id = ?", id, userID))
}

// GetProject returns the project id if userID owns it.
func (db *DB) GetProject(ctx context.Context, userID, id int64) (*models.Project, error) {
	return getProject(ctx, db.run(), userID, id)
}

// ListProjects returns the user's projects, newest first.
func (db *DB) ListProjects(ctx context.Context, userID int64, f models.ProjectFilter) ([]models.Project, error) {
	query := projectSelect + " WHERE p.user_id = ?"
	args := []any{userID}
	if f.ClientID != nil {
		query += " AND p.client_id = ?"
		args = append(args, *f.ClientID)
	}
	if f.Status != nil {
		query += " AND p.status = ?"
		args = append(args, string(*f.Status))
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"

	rows, err := db.run().query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject applies p to the project id owned by userID.
func (db *DB) UpdateProject(ctx context.Context, userID, id int64, p models.ProjectPatch) (*models.Project, error) {
	var a assignments
	if p.ClientID != nil {
		a.set("client_id", *p.ClientID)
	}
	if p.Name != nil {
		a.set("name", *p.Name)
	}
	if p.Description != nil {
		a.set("description", nullIfEmpty(p.Description))
	}
	if p.Status != nil {
		a.set("status", string(*p.Status))
	}
	if p.Rate != nil {
		a.set("rate", *p.Rate)
	}

	var out *models.Project
	err := db.withTx(ctx, func(r runner) error {
		if p.ClientID != nil {
			if err := r.owns(ctx, "clients", userID, *p.ClientID, errClientGone); err != nil {
				return err
			}
		}
		if !a.empty() {
			if err := r.update(ctx, "projects", userID, id, &a, now(), errProjectGone); err != nil {
				return err
			}
		}
		project, err := getProject(ctx, r, userID, id)
		out = project
		return err
	})
	return out, err
}

// DeleteProject removes the project id owned by userID and its time entries.
func (db *DB) DeleteProject(ctx context.Context, userID, id int64) error {
	return db.run().deleteOwned(ctx, "projects", userID, id, errProjectGone)
}

// CountProjects returns how many projects of userID have the given status.
func (db *DB) CountProjects(ctx context.Context, userID int64, status models.ProjectStatus) (int, error) {
	var n int
	err := db.run().queryRow(ctx,
		"SELECT COUNT(*) FROM projects WHERE user_id = ? AND status = ?", userID, string(status),
	).Scan(&n)
	return n, err
}
