package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"videoflow/internal/database"
	"videoflow/internal/model"
)

// textOrNull stores empty optional text as NULL.
func textOrNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullToStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// nullable turns a pointer into a driver value, nil becoming NULL.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// updateBuilder collects the SET clauses of a partial update. Only fields
// that were supplied become clauses; updated_at is always refreshed.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) add(column string, value any) {
	b.sets = append(b.sets, column+" = ?")
	b.args = append(b.args, value)
}

func addValue[T any](b *updateBuilder, column string, field model.Optional[T]) {
	if v, ok := field.Get(); ok {
		b.add(column, v)
	}
}

func addNullable[T any](b *updateBuilder, column string, field model.Optional[*T]) {
	if v, ok := field.Get(); ok {
		b.add(column, nullable(v))
	}
}

// exec issues the UPDATE for the row keyed by idColumn = id and returns
// ErrNotFound when no row matched. table and idColumn are trusted names.
func (b *updateBuilder) exec(ctx context.Context, db *database.DB, entity, table, idColumn string, id int64) error {
	sets := append(append([]string(nil), b.sets...), "updated_at = CURRENT_TIMESTAMP")
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", table, strings.Join(sets, ", "), idColumn)

	res, err := db.ExecContext(ctx, query, append(append([]any(nil), b.args...), id)...)
	if err != nil {
		return storageError("updating "+entity, err)
	}
	return expectRow(res, entity, id)
}

// deleteRow removes one row. Dependents are removed by ON DELETE CASCADE.
func deleteRow(ctx context.Context, db *database.DB, entity, table, idColumn string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, idColumn)
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return storageError("deleting "+entity, err)
	}
	return expectRow(res, entity, id)
}

func expectRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

// insertID runs an INSERT and returns the id assigned by the storage engine.
func insertID(ctx context.Context, db *database.DB, entity, query string, args ...any) (int64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storageError("creating "+entity, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading %s id: %w", entity, err)
	}
	return id, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows with scan. The result is never nil.
func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
