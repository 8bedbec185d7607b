package repository

import (
	"context"
	"fmt"

	"videoflow/internal/database"
)

// Row is one result row keyed by column name.
type Row map[string]any

// CommandResult reports the effect of a statement that returns no rows.
type CommandResult struct {
	LastInsertID int64
	RowsAffected int64
}

// QueryFacade runs caller-supplied SQL against the storage context.
// Placeholders are passed through to the driver unchanged.
type QueryFacade struct {
	db     *database.DB
	logger Logger
}

func NewQueryFacade(db *database.DB, logger Logger) *QueryFacade {
	return &QueryFacade{db: db, logger: orNop(logger)}
}

// ExecuteSQL runs a row-returning statement. Text stored as bytes is
// returned as string. The result is never nil.
func (q *QueryFacade) ExecuteSQL(ctx context.Context, query string, args ...any) ([]Row, error) {
	q.logger.Debug("executing query", "sql", query, "args", len(args))

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	out := []Row{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return out, nil
}

// ExecuteCommand runs a statement that returns no rows.
func (q *QueryFacade) ExecuteCommand(ctx context.Context, query string, args ...any) (CommandResult, error) {
	q.logger.Debug("executing command", "sql", query, "args", len(args))

	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return CommandResult{}, storageError("executing command", err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return CommandResult{}, fmt.Errorf("reading last insert id: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return CommandResult{}, fmt.Errorf("reading rows affected: %w", err)
	}
	return CommandResult{LastInsertID: lastID, RowsAffected: affected}, nil
}
