package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoflow/internal/database"
	"videoflow/internal/ordering"
)

// sequencer applies the ordering engine to one table of ordered children.
// Column and table names are fixed at construction, never user input.
type sequencer struct {
	entity       string
	table        string
	idColumn     string
	parentColumn string
}

var (
	storyboardSequence = sequencer{entity: "storyboard", table: "storyboards", idColumn: "storyboardId", parentColumn: "projectId"}
	dialogueSequence   = sequencer{entity: "dialogue", table: "dialogues", idColumn: "dialogueId", parentColumn: "storyboardId"}
)

// next returns the sequence number an appended child of parentID receives.
// Call it inside the transaction that performs the insert.
func (s sequencer) next(ctx context.Context, db *database.DB, parentID int64) (int64, error) {
	query := fmt.Sprintf("SELECT COALESCE(MAX(sequenceNumber), 0) FROM %s WHERE %s = ?", s.table, s.parentColumn)
	var max int64
	if err := db.QueryRowContext(ctx, query, parentID).Scan(&max); err != nil {
		return 0, fmt.Errorf("reading max %s sequence: %w", s.entity, err)
	}
	return ordering.Next(max), nil
}

func (s sequencer) items(ctx context.Context, db *database.DB, parentID int64) ([]ordering.Item, error) {
	query := fmt.Sprintf("SELECT %s, sequenceNumber FROM %s WHERE %s = ? ORDER BY sequenceNumber ASC, %s ASC",
		s.idColumn, s.table, s.parentColumn, s.idColumn)
	rows, err := db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing %s sequence: %w", s.entity, err)
	}
	defer rows.Close()

	var items []ordering.Item
	for rows.Next() {
		var it ordering.Item
		if err := rows.Scan(&it.ID, &it.SequenceNumber); err != nil {
			return nil, fmt.Errorf("scanning %s sequence: %w", s.entity, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s sequencer) parentOf(ctx context.Context, db *database.DB, id int64) (int64, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", s.parentColumn, s.table, s.idColumn)
	var parentID int64
	err := db.QueryRowContext(ctx, query, id).Scan(&parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &NotFoundError{Entity: s.entity, ID: id}
	}
	if err != nil {
		return 0, fmt.Errorf("finding %s: %w", s.entity, err)
	}
	return parentID, nil
}

// set overwrites one row's sequence number. Siblings are not shifted.
func (s sequencer) set(ctx context.Context, db *database.DB, id, seq int64) error {
	query := fmt.Sprintf("UPDATE %s SET sequenceNumber = ?, updated_at = CURRENT_TIMESTAMP WHERE %s = ?", s.table, s.idColumn)
	res, err := db.ExecContext(ctx, query, seq, id)
	if err != nil {
		return storageError("updating "+s.entity+" sequence", err)
	}
	return expectRow(res, s.entity, id)
}

// apply writes a batch in the order supplied, inside one transaction.
// Duplicate or non-contiguous numbers are written as given.
func (s sequencer) apply(ctx context.Context, db *database.DB, batch []ordering.Assignment) error {
	if err := ordering.Validate(batch); err != nil {
		return &ValidationError{Entity: s.entity, Field: "sequence batch", Reason: err.Error()}
	}
	if len(batch) == 0 {
		return nil
	}
	return db.WithTx(ctx, func(tx *database.DB) error {
		for _, a := range batch {
			if err := s.set(ctx, tx, a.ID, a.SequenceNumber); err != nil {
				return err
			}
		}
		return nil
	})
}

// move places id at position among its siblings and renumbers them 1..n.
func (s sequencer) move(ctx context.Context, db *database.DB, id int64, position int) ([]ordering.Assignment, error) {
	var applied []ordering.Assignment
	err := db.WithTx(ctx, func(tx *database.DB) error {
		parentID, err := s.parentOf(ctx, tx, id)
		if err != nil {
			return err
		}
		items, err := s.items(ctx, tx, parentID)
		if err != nil {
			return err
		}
		batch, err := ordering.Move(items, id, position)
		if err != nil {
			return fmt.Errorf("moving %s: %w", s.entity, err)
		}
		applied = batch
		return s.apply(ctx, tx, batch)
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// compact renumbers the children of parentID to 1..n in their current order.
func (s sequencer) compact(ctx context.Context, db *database.DB, parentID int64) ([]ordering.Assignment, error) {
	var applied []ordering.Assignment
	err := db.WithTx(ctx, func(tx *database.DB) error {
		items, err := s.items(ctx, tx, parentID)
		if err != nil {
			return err
		}
		applied = ordering.Compact(items)
		return s.apply(ctx, tx, applied)
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}
