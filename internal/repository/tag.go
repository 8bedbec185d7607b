package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"videoflow/internal/database"
	"videoflow/internal/model"
)

// TagRepository stores tag names and their links to videos.
type TagRepository struct {
	db     *database.DB
	logger Logger
}

func NewTagRepository(db *database.DB, logger Logger) *TagRepository {
	return &TagRepository{db: db, logger: orNop(logger)}
}

// Create returns the id of the tag called name, inserting it if needed.
// Names are trimmed before storage.
func (r *TagRepository) Create(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if err := requireText("tag", "name", name); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.WithTx(ctx, func(tx *database.DB) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", name)
		if err == nil {
			id, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("reading tag id: %w", err)
			}
			return nil
		}
		if !database.IsUniqueViolation(err) {
			return storageError("creating tag", err)
		}

		r.logger.Debug("tag exists, reusing", "name", name)
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", name).Scan(&id); err != nil {
			return fmt.Errorf("finding tag %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetAll returns every tag ordered by name.
func (r *TagRepository) GetAll(ctx context.Context) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM tags ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// GetByName returns the tag, or nil when no tag has that name.
func (r *TagRepository) GetByName(ctx context.Context, name string) (*model.Tag, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM tags WHERE name = ?", strings.TrimSpace(name))
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding tag: %w", err)
	}
	return t, nil
}

// GetByVideoID returns the tags linked to the video, ordered by name.
func (r *TagRepository) GetByVideoID(ctx context.Context, videoID int64) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.created_at FROM tags t
		 JOIN video_tags vt ON vt.tag_id = t.id
		 WHERE vt.video_id = ? ORDER BY t.name`,
		videoID)
	if err != nil {
		return nil, fmt.Errorf("listing video tags: %w", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("listing video tags: %w", err)
	}
	return tags, nil
}

// AddToVideo links the tag to the video. Linking twice is not an error.
func (r *TagRepository) AddToVideo(ctx context.Context, videoID, tagID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO video_tags (video_id, tag_id) VALUES (?, ?)",
		videoID, tagID); err != nil {
		return storageError("linking tag", err)
	}
	r.logger.Debug("linked tag", "video_id", videoID, "tag_id", tagID)
	return nil
}

// RemoveFromVideo deletes the link between the video and the tag.
func (r *TagRepository) RemoveFromVideo(ctx context.Context, videoID, tagID int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM video_tags WHERE video_id = ? AND tag_id = ?", videoID, tagID)
	if err != nil {
		return storageError("unlinking tag", err)
	}
	if err := expectRow(res, "video tag", tagID); err != nil {
		return err
	}
	r.logger.Debug("unlinked tag", "video_id", videoID, "tag_id", tagID)
	return nil
}

// Delete removes the tag and all of its video links.
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	return deleteRow(ctx, r.db, "tag", "tags", "id", id)
}

func scanTag(s scanner) (*model.Tag, error) {
	var (
		t         model.Tag
		createdAt sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = createdAt.Time
	return &t, nil
}
