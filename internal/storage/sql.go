package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
)

// SQLRepository implements Repository over database/sql.
// The same code serves PostgreSQL, SQLite and DuckDB; only placeholders and
// the migration set differ per Dialect.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect

	pets         *sqlCollection[care.Pet, *care.Pet]
	reminders    *sqlCollection[care.Reminder, *care.Reminder]
	appointments *sqlCollection[care.Appointment, *care.Appointment]
	feedings     *sqlCollection[care.FeedingSchedule, *care.FeedingSchedule]
	vaccinations *sqlCollection[care.Vaccination, *care.Vaccination]
}

// SQLConfig configures the connection pool of a SQL repository.
type SQLConfig struct {
	// Driver is the storage.driver name (postgres, sqlite or duckdb).
	Driver string

	// DSN is the driver-specific connection string.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime.
	ConnMaxLifetime time.Duration
}

// OpenSQL opens a SQL repository. It does not ping the database; call
// CheckConnectivity (usually under a retry policy) before use.
func OpenSQL(cfg SQLConfig) (*SQLRepository, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	if dialect.singleConn {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return NewSQLRepository(db, dialect), nil
}

// NewSQLRepository wraps an open database handle.
func NewSQLRepository(db *sql.DB, dialect Dialect) *SQLRepository {
	return &SQLRepository{
		db:           db,
		dialect:      dialect,
		pets:         &sqlCollection[care.Pet, *care.Pet]{db: db, dialect: dialect, table: petTable},
		reminders:    &sqlCollection[care.Reminder, *care.Reminder]{db: db, dialect: dialect, table: reminderTable},
		appointments: &sqlCollection[care.Appointment, *care.Appointment]{db: db, dialect: dialect, table: appointmentTable},
		feedings:     &sqlCollection[care.FeedingSchedule, *care.FeedingSchedule]{db: db, dialect: dialect, table: feedingTable},
		vaccinations: &sqlCollection[care.Vaccination, *care.Vaccination]{db: db, dialect: dialect, table: vaccinationTable},
	}
}

func (r *SQLRepository) Pets() Collection[care.Pet]                 { return r.pets }
func (r *SQLRepository) Reminders() Collection[care.Reminder]       { return r.reminders }
func (r *SQLRepository) Appointments() Collection[care.Appointment] { return r.appointments }
func (r *SQLRepository) Feedings() Collection[care.FeedingSchedule] { return r.feedings }
func (r *SQLRepository) Vaccinations() Collection[care.Vaccination] { return r.vaccinations }

// DB returns the underlying database handle.
func (r *SQLRepository) DB() *sql.DB {
	return r.db
}

// Dialect returns the repository's SQL dialect.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

// Migrate applies all pending migrations for the repository's dialect.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	return NewMigrationRunner(r.db, r.dialect).Run(ctx)
}

// CheckConnectivity verifies database connectivity.
func (r *SQLRepository) CheckConnectivity(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		pe := errors.NewStorageUnavailable(fmt.Sprintf("%s ping failed: %v", r.dialect.Name, err))
		pe.Cause = err
		return pe
	}
	return nil
}

// Close closes the database handle.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// tableDef maps one record kind onto a table. columns excludes id; values
// returns them in the same order, and scan reads id followed by columns.
type tableDef[T any] struct {
	name    string
	kind    string
	columns []string
	values  func(*T) []any
	scan    func(rowScanner) (*T, error)
}

func (t tableDef[T]) selectList() string {
	return "id, " + strings.Join(t.columns, ", ")
}

type sqlCollection[T any, P Entity[T]] struct {
	db      *sql.DB
	dialect Dialect
	table   tableDef[T]
}

// Create inserts item under MAX(id)+1, computed inside the insert
// transaction. On PostgreSQL an advisory lock per table keeps two
// concurrent creates from reading the same MAX(id).
func (c *sqlCollection[T, P]) Create(ctx context.Context, item *T) (*T, error) {
	if err := P(item).Validate(); err != nil {
		return nil, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError("begin transaction", err)
	}
	defer tx.Rollback()

	if lock := c.dialect.idLock(c.table.name); lock != "" {
		if _, err := tx.ExecContext(ctx, lock); err != nil {
			return nil, storageError("lock "+c.table.kind+" ids", err)
		}
	}

	var id int64
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", c.table.name),
	).Scan(&id); err != nil {
		return nil, storageError("allocate "+c.table.kind+" id", err)
	}

	stored := P(item).Clone()
	P(stored).SetEntityID(id)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		c.table.name, c.table.selectList(), c.dialect.placeholders(1, len(c.table.columns)+1))
	args := append([]any{id}, c.table.values(stored)...)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, storageError("insert "+c.table.kind, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError("commit "+c.table.kind, err)
	}
	return stored, nil
}

// Get retrieves a record by ID.
func (c *sqlCollection[T, P]) Get(ctx context.Context, id int64) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
		c.table.selectList(), c.table.name, c.dialect.Placeholder(1))
	item, err := c.table.scan(c.db.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(c.table.kind, id)
	}
	if err != nil {
		return nil, storageError("get "+c.table.kind, err)
	}
	return item, nil
}

// Update overwrites every column of the record with item's ID.
func (c *sqlCollection[T, P]) Update(ctx context.Context, item *T) (*T, error) {
	if err := P(item).Validate(); err != nil {
		return nil, err
	}

	sets := make([]string, len(c.table.columns))
	for i, col := range c.table.columns {
		sets[i] = fmt.Sprintf("%s = %s", col, c.dialect.Placeholder(i+1))
	}
	id := P(item).EntityID()
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		c.table.name, strings.Join(sets, ", "), c.dialect.Placeholder(len(sets)+1))
	args := append(c.table.values(item), id)

	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("update "+c.table.kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.NewNotFound(c.table.kind, id)
	}
	return P(item).Clone(), nil
}

// Delete removes a record by ID.
func (c *sqlCollection[T, P]) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", c.table.name, c.dialect.Placeholder(1))
	res, err := c.db.ExecContext(ctx, query, id)
	if err != nil {
		return storageError("delete "+c.table.kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFound(c.table.kind, id)
	}
	return nil
}

// List returns all records ordered by ID.
func (c *sqlCollection[T, P]) List(ctx context.Context) ([]*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", c.table.selectList(), c.table.name)
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("list "+c.table.kind, err)
	}
	defer rows.Close()

	result := make([]*T, 0)
	for rows.Next() {
		item, err := c.table.scan(rows)
		if err != nil {
			return nil, storageError("scan "+c.table.kind, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list "+c.table.kind, err)
	}
	return result, nil
}

// storageError wraps a backend failure. Context errors pass through so
// callers can tell cancellation apart from an outage.
func storageError(op string, err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.NewStorageFailure(op, err)
}

// Timestamps are stored as RFC 3339 text in UTC so that every dialect
// round-trips them identically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Verify SQLRepository implements Repository interface.
var _ Repository = (*SQLRepository)(nil)
