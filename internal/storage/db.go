package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"freelance-crm/internal/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	// Register the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// rebind rewrites ? placeholders into the dialect's form.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// DB wraps a sql.DB connection.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// NewDB opens a sqlite database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	return Open(context.Background(), DriverSQLite, path)
}

// Open connects to a sqlite file or a postgres DSN and runs migrations.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var (
		conn *sql.DB
		err  error
		d    dialect
	)
	switch driver {
	case DriverSQLite, "":
		conn, err = sql.Open("sqlite", dsn)
		d = dialectSQLite
	case DriverPostgres:
		conn, err = sql.Open("pgx", dsn)
		d = dialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if d == dialectSQLite {
		// One connection keeps :memory: databases alive and serialises writers.
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) migrate(ctx context.Context) error {
	migrations := sqliteSchema
	if db.dialect == dialectPostgres {
		migrations = postgresSchema
	} else if _, err := db.conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	for _, m := range migrations {
		if _, err := db.conn.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// runner executes ? placeholder queries on a connection or transaction.
type runner struct {
	q       querier
	dialect dialect
}

func (r runner) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.dialect.rebind(query), args...)
}

func (r runner) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.q.QueryContext(ctx, r.dialect.rebind(query), args...)
}

func (r runner) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.q.QueryRowContext(ctx, r.dialect.rebind(query), args...)
}

func (db *DB) run() runner {
	return runner{q: db.conn, dialect: db.dialect}
}

// withTx runs fn inside a transaction, committing when it returns nil.
// fn must only use the runner it is given.
func (db *DB) withTx(ctx context.Context, fn func(r runner) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(runner{q: tx, dialect: db.dialect}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// owns reports NotFound unless the row id in table belongs to userID.
func (r runner) owns(ctx context.Context, table string, userID, id int64, notFound string) error {
	var one int
	err := r.queryRow(ctx, "SELECT 1 FROM "+table+" WHERE id = ? AND user_id = ?", id, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(notFound)
	}
	return err
}

// deleteOwned removes one row owned by userID.
func (r runner) deleteOwned(ctx context.Context, table string, userID, id int64, notFound string) error {
	res, err := r.exec(ctx, "DELETE FROM "+table+" WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	return expectRows(res, notFound)
}

func expectRows(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound(notFound)
	}
	return nil
}

// assignments collects the column updates of a patch.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col+" = ?")
	a.args = append(a.args, v)
}

func (a *assignments) empty() bool {
	return len(a.cols) == 0
}

// update applies a to the row id of table owned by userID.
func (r runner) update(ctx context.Context, table string, userID, id int64, a *assignments, now time.Time, notFound string) error {
	query := "UPDATE " + table + " SET updated_at = ?"
	args := make([]any, 0, len(a.args)+3)
	args = append(args, now)
	for i, c := range a.cols {
		query += ", " + c
		args = append(args, a.args[i])
	}
	query += " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)

	res, err := r.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectRows(res, notFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// now is the timestamp written to rows, truncated to what every dialect stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := utc(*t)
	return &v
}

// nullIfEmpty stores blank optional text as NULL.
func nullIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
