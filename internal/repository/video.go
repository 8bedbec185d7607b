package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoflow/internal/database"
	"videoflow/internal/model"
)

const videoColumns = "id, title, path, duration, created_at, updated_at"

// VideoRepository stores rendered video files.
type VideoRepository struct {
	db     *database.DB
	logger Logger
}

func NewVideoRepository(db *database.DB, logger Logger) *VideoRepository {
	return &VideoRepository{db: db, logger: orNop(logger)}
}

func (r *VideoRepository) Create(ctx context.Context, in model.NewVideo) (int64, error) {
	if err := requireText("video", "title", in.Title); err != nil {
		return 0, err
	}
	if err := requireText("video", "path", in.Path); err != nil {
		return 0, err
	}
	if in.Duration != nil && *in.Duration < 0 {
		return 0, &ValidationError{Entity: "video", Field: "duration", Reason: "must not be negative"}
	}
	id, err := insertID(ctx, r.db, "video",
		"INSERT INTO videos (title, path, duration) VALUES (?, ?, ?)",
		in.Title, in.Path, nullable(in.Duration))
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created video", "video_id", id)
	return id, nil
}

// GetAll returns every video, most recently created first.
func (r *VideoRepository) GetAll(ctx context.Context) ([]*model.Video, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+videoColumns+" FROM videos ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	videos, err := collect(rows, scanVideo)
	if err != nil {
		return nil, fmt.Errorf("listing videos: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) Update(ctx context.Context, id int64, patch model.VideoPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if title, ok := patch.Title.Get(); ok {
		if err := requireText("video", "title", title); err != nil {
			return err
		}
	}
	if path, ok := patch.Path.Get(); ok {
		if err := requireText("video", "path", path); err != nil {
			return err
		}
	}
	if d, ok := patch.Duration.Get(); ok && d != nil && *d < 0 {
		return &ValidationError{Entity: "video", Field: "duration", Reason: "must not be negative"}
	}

	var b updateBuilder
	addValue(&b, "title", patch.Title)
	addValue(&b, "path", patch.Path)
	addNullable(&b, "duration", patch.Duration)
	return b.exec(ctx, r.db, "video", "videos", "id", id)
}

// Delete removes the video and its tag links.
func (r *VideoRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, r.db, "video", "videos", "id", id); err != nil {
		return err
	}
	r.logger.Debug("deleted video", "video_id", id)
	return nil
}

func scanVideo(s scanner) (*model.Video, error) {
	var (
		v                    model.Video
		duration             sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&v.ID, &v.Title, &v.Path, &duration, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	v.Duration = nullToInt64Ptr(duration)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time
	return &v, nil
}
