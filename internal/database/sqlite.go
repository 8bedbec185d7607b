package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"videoflow/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultBusyTimeoutMS is how long SQLite waits on a locked database before
// returning SQLITE_BUSY.
const DefaultBusyTimeoutMS = 5000

// Querier is the statement surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the storage context handed to every repository. It is either bound
// to the connection pool or, inside WithTx, to a single open transaction.
type DB struct {
	db   *sql.DB
	tx   *sql.Tx
	path string
}

// New opens the SQLite database at path.
// path can be a file path or ":memory:" for an in-memory database.
func New(path string, busyTimeoutMS int) (*DB, error) {
	db, err := OpenConnection(path, busyTimeoutMS)
	if err != nil {
		return nil, err
	}
	return &DB{db: db, path: path}, nil
}

// NewFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewFromDB(db *sql.DB) *DB {
	return &DB{db: db}
}

// OpenConnection opens and configures a SQLite connection.
// Foreign keys are switched on through the DSN so every pooled connection
// enforces ON DELETE CASCADE, and the pool is capped at one connection:
// the process is the only writer and ":memory:" databases are per-connection.
func OpenConnection(path string, busyTimeoutMS int) (*sql.DB, error) {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = DefaultBusyTimeoutMS
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := fmt.Sprintf("%s%s_foreign_keys=on&_busy_timeout=%d", path, sep, busyTimeoutMS)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStorageUnavailable, path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %v", ErrStorageUnavailable, path, err)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: reading foreign_keys pragma: %v", ErrStorageUnavailable, err)
	}
	if fk != 1 {
		db.Close()
		return nil, fmt.Errorf("%w: foreign key enforcement is not available", ErrStorageUnavailable)
	}

	return db, nil
}

func (d *DB) querier() Querier {
	if d.tx != nil {
		return d.tx
	}
	return d.db
}

// ExecContext runs a statement on the bound connection or transaction.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.querier().ExecContext(ctx, query, args...)
}

// QueryContext runs a query on the bound connection or transaction.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.querier().QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query on the bound connection or transaction.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.querier().QueryRowContext(ctx, query, args...)
}

// InTx reports whether d is bound to an open transaction.
func (d *DB) InTx() bool {
	return d.tx != nil
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back on an error or a panic. Calling WithTx on a
// transaction-bound DB joins the open transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *DB) error) error {
	if d.tx != nil {
		return fn(d)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&DB{db: d.db, tx: tx, path: d.path}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// EnsureSchema brings the schema up to date. It is safe to call on every start.
func (d *DB) EnsureSchema(ctx context.Context) error {
	if d.tx != nil {
		return fmt.Errorf("ensuring schema: not allowed inside a transaction")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := migrations.MigrateUp(d.db); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

// CheckMigrations verifies the database schema is up-to-date.
func (d *DB) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(d.db)
}

// MigrationStatus reports the applied and latest schema versions.
func (d *DB) MigrationStatus() (*migrations.Status, error) {
	return migrations.ReadStatus(d.db)
}

// Schema returns the CREATE statements for every user table and index,
// tables first, each group ordered by name.
func (d *DB) Schema(ctx context.Context) (string, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index', 'trigger')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY
		  CASE type
		    WHEN 'table' THEN 1
		    WHEN 'index' THEN 2
		    WHEN 'trigger' THEN 3
		  END,
		  name
	`)
	if err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning schema: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading schema: %w", err)
	}
	return b.String(), nil
}

// Tables returns the names of the user tables, sorted.
func (d *DB) Tables(ctx context.Context) ([]string, error) {
	rows, err := d.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (d *DB) BackupTo(ctx context.Context, destPath string) error {
	if _, err := d.ExecContext(ctx, "VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection. A transaction-bound DB does not own
// the connection and closing it is a no-op.
func (d *DB) Close() error {
	if d.tx != nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}
