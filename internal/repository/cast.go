package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoflow/internal/database"
	"videoflow/internal/model"
)

const (
	sceneColumns     = "sceneId, projectId, sceneName, description, created_at, updated_at"
	characterColumns = "characterId, projectId, characterName, description, voice, created_at, updated_at"
)

// SceneRepository stores the scenes of a project.
type SceneRepository struct {
	db     *database.DB
	logger Logger
}

func NewSceneRepository(db *database.DB, logger Logger) *SceneRepository {
	return &SceneRepository{db: db, logger: orNop(logger)}
}

func (r *SceneRepository) Create(ctx context.Context, in model.NewScene) (int64, error) {
	if err := requireID("scene", "project id", in.ProjectID); err != nil {
		return 0, err
	}
	if err := requireText("scene", "name", in.Name); err != nil {
		return 0, err
	}
	id, err := insertID(ctx, r.db, "scene",
		"INSERT INTO scenes (projectId, sceneName, description) VALUES (?, ?, ?)",
		in.ProjectID, in.Name, textOrNull(in.Description))
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created scene", "scene_id", id, "project_id", in.ProjectID)
	return id, nil
}

// GetByProjectID returns the project's scenes, most recently created first.
func (r *SceneRepository) GetByProjectID(ctx context.Context, projectID int64) ([]*model.Scene, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sceneColumns+" FROM scenes WHERE projectId = ? ORDER BY created_at DESC, sceneId DESC",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	scenes, err := collect(rows, scanScene)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	return scenes, nil
}

func (r *SceneRepository) GetByID(ctx context.Context, id int64) (*model.Scene, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+sceneColumns+" FROM scenes WHERE sceneId = ?", id)
	sc, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding scene: %w", err)
	}
	return sc, nil
}

func (r *SceneRepository) Update(ctx context.Context, id int64, patch model.ScenePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if name, ok := patch.Name.Get(); ok {
		if err := requireText("scene", "name", name); err != nil {
			return err
		}
	}

	var b updateBuilder
	addValue(&b, "sceneName", patch.Name)
	addNullable(&b, "description", patch.Description)
	return b.exec(ctx, r.db, "scene", "scenes", "sceneId", id)
}

func (r *SceneRepository) Delete(ctx context.Context, id int64) error {
	return deleteRow(ctx, r.db, "scene", "scenes", "sceneId", id)
}

func scanScene(s scanner) (*model.Scene, error) {
	var (
		sc                   model.Scene
		description          sql.NullString
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&sc.ID, &sc.ProjectID, &sc.Name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sc.Description = nullToStringPtr(description)
	sc.CreatedAt = createdAt.Time
	sc.UpdatedAt = updatedAt.Time
	return &sc, nil
}

// CharacterRepository stores the cast of a project.
type CharacterRepository struct {
	db     *database.DB
	logger Logger
}

func NewCharacterRepository(db *database.DB, logger Logger) *CharacterRepository {
	return &CharacterRepository{db: db, logger: orNop(logger)}
}

func (r *CharacterRepository) Create(ctx context.Context, in model.NewCharacter) (int64, error) {
	if err := requireID("character", "project id", in.ProjectID); err != nil {
		return 0, err
	}
	if err := requireText("character", "name", in.Name); err != nil {
		return 0, err
	}
	id, err := insertID(ctx, r.db, "character",
		"INSERT INTO characters (projectId, characterName, description, voice) VALUES (?, ?, ?, ?)",
		in.ProjectID, in.Name, textOrNull(in.Description), textOrNull(in.Voice))
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created character", "character_id", id, "project_id", in.ProjectID)
	return id, nil
}

// GetByProjectID returns the project's characters, most recently created first.
func (r *CharacterRepository) GetByProjectID(ctx context.Context, projectID int64) ([]*model.Character, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+characterColumns+" FROM characters WHERE projectId = ? ORDER BY created_at DESC, characterId DESC",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	cast, err := collect(rows, scanCharacter)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	return cast, nil
}

func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*model.Character, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+characterColumns+" FROM characters WHERE characterId = ?", id)
	c, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding character: %w", err)
	}
	return c, nil
}

func (r *CharacterRepository) Update(ctx context.Context, id int64, patch model.CharacterPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if name, ok := patch.Name.Get(); ok {
		if err := requireText("character", "name", name); err != nil {
			return err
		}
	}

	var b updateBuilder
	addValue(&b, "characterName", patch.Name)
	addNullable(&b, "description", patch.Description)
	addNullable(&b, "voice", patch.Voice)
	return b.exec(ctx, r.db, "character", "characters", "characterId", id)
}

func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	return deleteRow(ctx, r.db, "character", "characters", "characterId", id)
}

func scanCharacter(s scanner) (*model.Character, error) {
	var (
		c                    model.Character
		description, voice   sql.NullString
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.ProjectID, &c.Name, &description, &voice, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Description = nullToStringPtr(description)
	c.Voice = nullToStringPtr(voice)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}
