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

const dialogueColumns = "dialogueId, storyboardId, content, character, tone, sequenceNumber, created_at, updated_at"

// DialogueRepository stores the ordered lines of a storyboard.
type DialogueRepository struct {
	db     *database.DB
	logger Logger
}

func NewDialogueRepository(db *database.DB, logger Logger) *DialogueRepository {
	return &DialogueRepository{db: db, logger: orNop(logger)}
}

// Create inserts a dialogue line. Without an explicit sequence number it
// receives one more than the storyboard's current maximum, or 1.
func (r *DialogueRepository) Create(ctx context.Context, in model.NewDialogue) (int64, error) {
	if err := requireID("dialogue", "storyboard id", in.StoryboardID); err != nil {
		return 0, err
	}
	if err := requireText("dialogue", "content", in.Content); err != nil {
		return 0, err
	}
	if in.SequenceNumber != nil {
		if err := requireSequence("dialogue", *in.SequenceNumber); err != nil {
			return 0, err
		}
	}

	var id, seq int64
	err := r.db.WithTx(ctx, func(tx *database.DB) error {
		if in.SequenceNumber != nil {
			seq = *in.SequenceNumber
		} else {
			next, err := dialogueSequence.next(ctx, tx, in.StoryboardID)
			if err != nil {
				return err
			}
			seq = next
		}

		var err error
		id, err = insertID(ctx, tx, "dialogue",
			"INSERT INTO dialogues (storyboardId, content, character, tone, sequenceNumber) VALUES (?, ?, ?, ?, ?)",
			in.StoryboardID, in.Content, textOrNull(in.Character), textOrNull(in.Tone), seq)
		return err
	})
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created dialogue", "dialogue_id", id, "storyboard_id", in.StoryboardID, "sequence", seq)
	return id, nil
}

// GetByStoryboardID returns the storyboard's lines in ascending sequence order.
func (r *DialogueRepository) GetByStoryboardID(ctx context.Context, storyboardID int64) ([]*model.Dialogue, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+dialogueColumns+" FROM dialogues WHERE storyboardId = ? ORDER BY sequenceNumber ASC, dialogueId ASC",
		storyboardID)
	if err != nil {
		return nil, fmt.Errorf("listing dialogues: %w", err)
	}
	lines, err := collect(rows, scanDialogue)
	if err != nil {
		return nil, fmt.Errorf("listing dialogues: %w", err)
	}
	return lines, nil
}

// GetByID returns the dialogue, or nil when it does not exist.
func (r *DialogueRepository) GetByID(ctx context.Context, id int64) (*model.Dialogue, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+dialogueColumns+" FROM dialogues WHERE dialogueId = ?", id)
	d, err := scanDialogue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding dialogue: %w", err)
	}
	return d, nil
}

// Update applies the supplied fields. An empty patch issues no statement.
func (r *DialogueRepository) Update(ctx context.Context, id int64, patch model.DialoguePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if content, ok := patch.Content.Get(); ok {
		if err := requireText("dialogue", "content", content); err != nil {
			return err
		}
	}
	if seq, ok := patch.SequenceNumber.Get(); ok {
		if err := requireSequence("dialogue", seq); err != nil {
			return err
		}
	}

	var b updateBuilder
	addValue(&b, "content", patch.Content)
	addNullable(&b, "character", patch.Character)
	addNullable(&b, "tone", patch.Tone)
	addValue(&b, "sequenceNumber", patch.SequenceNumber)
	if err := b.exec(ctx, r.db, "dialogue", "dialogues", "dialogueId", id); err != nil {
		return err
	}
	r.logger.Debug("updated dialogue", "dialogue_id", id)
	return nil
}

// UpdateSequence overwrites one line's sequence number without shifting
// its siblings.
func (r *DialogueRepository) UpdateSequence(ctx context.Context, id, seq int64) error {
	if err := requireSequence("dialogue", seq); err != nil {
		return err
	}
	return dialogueSequence.set(ctx, r.db, id, seq)
}

// UpdateSequences applies a reordered batch atomically, in the order supplied.
func (r *DialogueRepository) UpdateSequences(ctx context.Context, batch []ordering.Assignment) error {
	if err := dialogueSequence.apply(ctx, r.db, batch); err != nil {
		return err
	}
	r.logger.Debug("reordered dialogues", "count", len(batch))
	return nil
}

// Move places the line at the 1-based position within its storyboard.
func (r *DialogueRepository) Move(ctx context.Context, id int64, position int) ([]ordering.Assignment, error) {
	applied, err := dialogueSequence.move(ctx, r.db, id, position)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("moved dialogue", "dialogue_id", id, "position", position, "changed", len(applied))
	return applied, nil
}

// Compact renumbers the storyboard's lines to 1..n, keeping their order.
func (r *DialogueRepository) Compact(ctx context.Context, storyboardID int64) ([]ordering.Assignment, error) {
	applied, err := dialogueSequence.compact(ctx, r.db, storyboardID)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("compacted dialogues", "storyboard_id", storyboardID, "changed", len(applied))
	return applied, nil
}

func (r *DialogueRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, r.db, "dialogue", "dialogues", "dialogueId", id); err != nil {
		return err
	}
	r.logger.Debug("deleted dialogue", "dialogue_id", id)
	return nil
}

func scanDialogue(s scanner) (*model.Dialogue, error) {
	var (
		d                    model.Dialogue
		character, tone      sql.NullString
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&d.ID, &d.StoryboardID, &d.Content, &character, &tone, &d.SequenceNumber, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.Character = nullToStringPtr(character)
	d.Tone = nullToStringPtr(tone)
	d.CreatedAt = createdAt.Time
	d.UpdatedAt = updatedAt.Time
	return &d, nil
}
