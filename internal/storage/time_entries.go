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
	timeEntrySelect = `SELECT t.id, t.user_id, t.project_id, t.description, t.hours, t.date,
	t.start_time, t.end_time, t.is_running, t.invoice_id, t.created_at, t.updated_at, p.name
	FROM time_entries t JOIN projects p ON p.id = t.project_id`
	errTimeEntryGone  = "time entry not found"
	errNoRunningTimer = "no running timer found"
)

func scanTimeEntry(s rowScanner, notFound string) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := s.Scan(&e.ID, &e.UserID, &e.ProjectID, &e.Description, &e.Hours, &e.Date,
		&e.StartTime, &e.EndTime, &e.IsRunning, &e.InvoiceID, &e.CreatedAt, &e.UpdatedAt, &e.ProjectName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound(notFound)
		}
		return nil, err
	}
	return &e, nil
}

func scanTimeEntries(rows *sql.Rows) ([]models.TimeEntry, error) {
	defer rows.Close()
	entries := []models.TimeEntry{}
	for rows.Next() {
		e, err := scanTimeEntry(rows, errTimeEntryGone)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// CreateTimeEntry logs a stopped block of hours on one of the user's projects.
func (db *DB) CreateTimeEntry(ctx context.Context, userID int64, in models.NewTimeEntry) (*models.TimeEntry, error) {
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	var out *models.TimeEntry
	err := db.withTx(ctx, func(r runner) error {
		if err := r.owns(ctx, "projects", userID, in.ProjectID, errProjectGone); err != nil {
			return err
		}
		ts := now()
		var id int64
		err := r.queryRow(ctx, `
			INSERT INTO time_entries (user_id, project_id, description, hours, date, is_running, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			userID, in.ProjectID, nullIfEmpty(in.Description), in.Hours, utc(date), false, ts, ts,
		).Scan(&id)
		if err != nil {
			return err
		}
		out, err = getTimeEntry(ctx, r, userID, id)
		return err
	})
	return out, err
}

func getTimeEntry(ctx context.Context, r runner, userID, id int64) (*models.TimeEntry, error) {
	return scanTimeEntry(r.queryRow(ctx, timeEntrySelect+" WHERE t.id = ? AND t.user_id = ?", id, userID), errTimeEntryGone)
}

// GetTimeEntry returns the time entry id if userID owns it.
func (db *DB) GetTimeEntry(ctx context.Context, userID, id int64) (*models.TimeEntry, error) {
	return getTimeEntry(ctx, db.run(), userID, id)
}

// ListTimeEntries returns the user's time entries, most recent date first.
func (db *DB) ListTimeEntries(ctx context.Context, userID int64, f models.TimeEntryFilter) ([]models.TimeEntry, error) {
	query := timeEntrySelect + " WHERE t.user_id = ?"
	args := []any{userID}
	if f.ProjectID != nil {
		query += " AND t.project_id = ?"
		args = append(args, *f.ProjectID)
	}
	if f.Unbilled {
		query += " AND t.invoice_id IS NULL AND t.is_running = FALSE"
	}
	query += " ORDER BY t.date DESC, t.id DESC"

	rows, err := db.run().query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTimeEntries(rows)
}

// UpdateTimeEntry applies p to the time entry id owned by userID.
func (db *DB) UpdateTimeEntry(ctx context.Context, userID, id int64, p models.TimeEntryPatch) (*models.TimeEntry, error) {
	var a assignments
	if p.ProjectID != nil {
		a.set("project_id", *p.ProjectID)
	}
	if p.Description != nil {
		a.set("description", nullIfEmpty(p.Description))
	}
	if p.Hours != nil {
		a.set("hours", *p.Hours)
	}
	if p.Date != nil {
		a.set("date", utc(*p.Date))
	}

	var out *models.TimeEntry
	err := db.withTx(ctx, func(r runner) error {
		if p.ChangesBilling() {
			cur, err := getTimeEntry(ctx, r, userID, id)
			if err != nil {
				return err
			}
			if cur.Billed() {
				return apperrors.Validation("time entry is already invoiced; delete the invoice to change its hours or project")
			}
		}
		if p.ProjectID != nil {
			if err := r.owns(ctx, "projects", userID, *p.ProjectID, errProjectGone); err != nil {
				return err
			}
		}
		if !a.empty() {
			if err := r.update(ctx, "time_entries", userID, id, &a, now(), errTimeEntryGone); err != nil {
				return err
			}
		}
		e, err := getTimeEntry(ctx, r, userID, id)
		out = e
		return err
	})
	return out, err
}

// DeleteTimeEntry removes the time entry id owned by userID.
func (db *DB) DeleteTimeEntry(ctx context.Context, userID, id int64) error {
	return db.run().deleteOwned(ctx, "time_entries", userID, id, errTimeEntryGone)
}

// TotalHours sums all hours logged by userID on a project.
func (db *DB) TotalHours(ctx context.Context, userID, projectID int64) (float64, error) {
	var total float64
	err := db.run().queryRow(ctx,
		"SELECT COALESCE(SUM(hours), 0) FROM time_entries WHERE user_id = ? AND project_id = ?",
		userID, projectID,
	).Scan(&total)
	return total, err
}

func getRunningTimer(ctx context.Context, r runner, userID int64) (*models.TimeEntry, error) {
	e, err := scanTimeEntry(r.queryRow(ctx,
		timeEntrySelect+" WHERE t.user_id = ? AND t.is_running = TRUE", userID), errNoRunningTimer)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// GetRunningTimer returns the user's running timer, or nil when none runs.
func (db *DB) GetRunningTimer(ctx context.Context, userID int64) (*models.TimeEntry, error) {
	return getRunningTimer(ctx, db.run(), userID)
}

// StartTimer stops the user's running timer, if any, and starts a new one on
// in.ProjectID within one transaction. preempt returns the hours recorded on
// the timer being stopped. The stopped entry is returned when there was one.
func (db *DB) StartTimer(ctx context.Context, userID int64, in models.TimerStart, at time.Time,
	preempt func(running *models.TimeEntry) float64) (started, stopped *models.TimeEntry, err error) {
	at = utc(at)
	err = db.withTx(ctx, func(r runner) error {
		if err := r.owns(ctx, "projects", userID, in.ProjectID, errProjectGone); err != nil {
			return err
		}

		running, err := getRunningTimer(ctx, r, userID)
		if err != nil {
			return err
		}
		if running != nil {
			if err := stopRunning(ctx, r, userID, running.ID, at, preempt(running)); err != nil {
				return err
			}
			if stopped, err = getTimeEntry(ctx, r, userID, running.ID); err != nil {
				return err
			}
		}

		ts := now()
		var id int64
		err = r.queryRow(ctx, `
			INSERT INTO time_entries (user_id, project_id, description, hours, date, start_time, is_running, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
			userID, in.ProjectID, nullIfEmpty(in.Description), 0.0, at, at, true, ts, ts,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return apperrors.Conflict("another timer was started at the same time")
			}
			return err
		}
		started, err = getTimeEntry(ctx, r, userID, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return started, stopped, nil
}

// StopTimer stops the running timer id owned by userID. hours receives the
// timer's start time and returns the hours to record.
func (db *DB) StopTimer(ctx context.Context, userID, id int64, at time.Time,
	hours func(start time.Time) float64) (*models.TimeEntry, error) {
	at = utc(at)
	var out *models.TimeEntry
	err := db.withTx(ctx, func(r runner) error {
		e, err := scanTimeEntry(r.queryRow(ctx,
			timeEntrySelect+" WHERE t.id = ? AND t.user_id = ? AND t.is_running = TRUE", id, userID), errNoRunningTimer)
		if err != nil {
			return err
		}
		start := at
		if e.StartTime != nil {
			start = *e.StartTime
		}
		if err := stopRunning(ctx, r, userID, id, at, hours(start)); err != nil {
			return err
		}
		out, err = getTimeEntry(ctx, r, userID, id)
		return err
	})
	return out, err
}

// stopRunning flips a running entry to stopped. Zero rows means someone else
// stopped it first.
func stopRunning(ctx context.Context, r runner, userID, id int64, at time.Time, hours float64) error {
	res, err := r.exec(ctx, `
		UPDATE time_entries SET is_running = FALSE, end_time = ?, hours = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND is_running = TRUE`,
		at, hours, now(), id, userID,
	)
	if err != nil {
		return err
	}
	return expectRows(res, errNoRunningTimer)
}
