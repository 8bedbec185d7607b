package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoflow/internal/database"
	"videoflow/internal/model"
	"videoflow/internal/ordering"
)

const storyboardColumns = "storyboardId, projectId, sequenceNumber, description, imagePrompt, created_at, updated_at"

// StoryboardRepository stores the ordered shots of a project.
type StoryboardRepository struct {
	db     *database.DB
	logger Logger
}

func NewStoryboardRepository(db *database.DB, logger Logger) *StoryboardRepository {
	return &StoryboardRepository{db: db, logger: orNop(logger)}
}

// Create inserts a storyboard. Without an explicit sequence number it is
// appended after the project's current last storyboard.
func (r *StoryboardRepository) Create(ctx context.Context, in model.NewStoryboard) (int64, error) {
	if err := requireID("storyboard", "project id", in.ProjectID); err != nil {
		return 0, err
	}
	if in.SequenceNumber != nil {
		if err := requireSequence("storyboard", *in.SequenceNumber); err != nil {
			return 0, err
		}
	}

	var id, seq int64
	err := r.db.WithTx(ctx, func(tx *database.DB) error {
		if in.SequenceNumber != nil {
			seq = *in.SequenceNumber
		} else {
			next, err := storyboardSequence.next(ctx, tx, in.ProjectID)
			if err != nil {
				return err
			}
			seq = next
		}

		var err error
		id, err = insertID(ctx, tx, "storyboard",
			"INSERT INTO storyboards (projectId, sequenceNumber, description, imagePrompt) VALUES (?, ?, ?, ?)",
			in.ProjectID, seq, textOrNull(in.Description), textOrNull(in.ImagePrompt))
		return err
	})
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created storyboard", "storyboard_id", id, "project_id", in.ProjectID, "sequence", seq)
	return id, nil
}

// GetByProjectID returns the project's storyboards in ascending sequence order.
func (r *StoryboardRepository) GetByProjectID(ctx context.Context, projectID int64) ([]*model.Storyboard, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+storyboardColumns+" FROM storyboards WHERE projectId = ? ORDER BY sequenceNumber ASC, storyboardId ASC",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing storyboards: %w", err)
	}
	boards, err := collect(rows, scanStoryboard)
	if err != nil {
		return nil, fmt.Errorf("listing storyboards: %w", err)
	}
	return boards, nil
}

// GetByID returns the storyboard, or nil when it does not exist.
func (r *StoryboardRepository) GetByID(ctx context.Context, id int64) (*model.Storyboard, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+storyboardColumns+" FROM storyboards WHERE storyboardId = ?", id)
	sb, err := scanStoryboard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding storyboard: %w", err)
	}
	return sb, nil
}

// Update applies the supplied fields. An empty patch issues no statement.
func (r *StoryboardRepository) Update(ctx context.Context, id int64, patch model.StoryboardPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if seq, ok := patch.SequenceNumber.Get(); ok {
		if err := requireSequence("storyboard", seq); err != nil {
			return err
		}
	}

	var b updateBuilder
	addValue(&b, "sequenceNumber", patch.SequenceNumber)
	addNullable(&b, "description", patch.Description)
	addNullable(&b, "imagePrompt", patch.ImagePrompt)
	if err := b.exec(ctx, r.db, "storyboard", "storyboards", "storyboardId", id); err != nil {
		return err
	}
	r.logger.Debug("updated storyboard", "storyboard_id", id)
	return nil
}

// UpdateSequence overwrites one storyboard's sequence number without
// shifting its siblings.
func (r *StoryboardRepository) UpdateSequence(ctx context.Context, id, seq int64) error {
	if err := requireSequence("storyboard", seq); err != nil {
		return err
	}
	return storyboardSequence.set(ctx, r.db, id, seq)
}

// UpdateSequences applies a reordered batch in the order supplied. The batch
// is atomic: if any row is missing nothing is written.
func (r *StoryboardRepository) UpdateSequences(ctx context.Context, batch []ordering.Assignment) error {
	if err := storyboardSequence.apply(ctx, r.db, batch); err != nil {
		return err
	}
	r.logger.Debug("reordered storyboards", "count", len(batch))
	return nil
}

// Move places the storyboard at the 1-based position within its project and
// renumbers the project's storyboards contiguously.
func (r *StoryboardRepository) Move(ctx context.Context, id int64, position int) ([]ordering.Assignment, error) {
	applied, err := storyboardSequence.move(ctx, r.db, id, position)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("moved storyboard", "storyboard_id", id, "position", position, "changed", len(applied))
	return applied, nil
}

// Compact renumbers the project's storyboards to 1..n, keeping their order.
func (r *StoryboardRepository) Compact(ctx context.Context, projectID int64) ([]ordering.Assignment, error) {
	applied, err := storyboardSequence.compact(ctx, r.db, projectID)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("compacted storyboards", "project_id", projectID, "changed", len(applied))
	return applied, nil
}

// Delete removes the storyboard and, by cascade, its dialogues.
func (r *StoryboardRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, r.db, "storyboard", "storyboards", "storyboardId", id); err != nil {
		return err
	}
	r.logger.Debug("deleted storyboard", "storyboard_id", id)
	return nil
}

func scanStoryboard(s scanner) (*model.Storyboard, error) {
	var (
		sb                   model.Storyboard
		description, prompt  sql.NullString
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&sb.ID, &sb.ProjectID, &sb.SequenceNumber, &description, &prompt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sb.Description = nullToStringPtr(description)
	sb.ImagePrompt = nullToStringPtr(prompt)
	sb.CreatedAt = createdAt.Time
	sb.UpdatedAt = updatedAt.Time
	return &sb, nil
}
