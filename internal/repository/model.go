package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoflow/internal/database"
	"videoflow/internal/model"
)

const modelColumns = "modelId, projectId, modelName, modelPath, apiKey, isDefault, created_at, updated_at"

// ModelRepository stores one kind of generation model. The three kinds share
// a table layout, so one type serves all of them.
type ModelRepository struct {
	db     *database.DB
	kind   model.ModelKind
	table  string
	logger Logger
}

// NewModelRepository returns the repository for kind. It panics on an
// unknown kind, which is a programming error.
func NewModelRepository(db *database.DB, kind model.ModelKind, logger Logger) *ModelRepository {
	if !kind.Valid() {
		panic(fmt.Sprintf("repository: unknown model kind %q", kind))
	}
	return &ModelRepository{db: db, kind: kind, table: kind.Table(), logger: orNop(logger)}
}

// Kind reports which model table the repository serves.
func (r *ModelRepository) Kind() model.ModelKind { return r.kind }

func (r *ModelRepository) entity() string { return string(r.kind) + " model" }

// Create registers a model. New models are never the default.
func (r *ModelRepository) Create(ctx context.Context, in model.NewModel) (int64, error) {
	if err := requireID(r.entity(), "project id", in.ProjectID); err != nil {
		return 0, err
	}
	if err := requireText(r.entity(), "name", in.Name); err != nil {
		return 0, err
	}
	id, err := insertID(ctx, r.db, r.entity(),
		"INSERT INTO "+r.table+" (projectId, modelName, modelPath, apiKey, isDefault) VALUES (?, ?, ?, ?, 0)",
		in.ProjectID, in.Name, textOrNull(in.Path), textOrNull(in.APIKey))
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created model", "kind", r.kind, "model_id", id, "project_id", in.ProjectID)
	return id, nil
}

// GetByProjectID lists the project's models with the default first, then
// newest first.
func (r *ModelRepository) GetByProjectID(ctx context.Context, projectID int64) ([]*model.Model, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+modelColumns+" FROM "+r.table+" WHERE projectId = ? ORDER BY isDefault DESC, created_at DESC, modelId DESC",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", r.entity(), err)
	}
	models, err := collect(rows, r.scan)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", r.entity(), err)
	}
	return models, nil
}

// GetByID returns the model, or nil when it does not exist.
func (r *ModelRepository) GetByID(ctx context.Context, id int64) (*model.Model, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+modelColumns+" FROM "+r.table+" WHERE modelId = ?", id)
	m, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding %s: %w", r.entity(), err)
	}
	return m, nil
}

// GetDefault returns the project's default model, or nil when none is set.
func (r *ModelRepository) GetDefault(ctx context.Context, projectID int64) (*model.Model, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+modelColumns+" FROM "+r.table+" WHERE projectId = ? AND isDefault = 1 ORDER BY modelId LIMIT 1",
		projectID)
	m, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding default %s: %w", r.entity(), err)
	}
	return m, nil
}

// Update applies the supplied fields. The default flag is not patchable.
func (r *ModelRepository) Update(ctx context.Context, id int64, patch model.ModelPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if name, ok := patch.Name.Get(); ok {
		if err := requireText(r.entity(), "name", name); err != nil {
			return err
		}
	}

	var b updateBuilder
	addValue(&b, "modelName", patch.Name)
	addNullable(&b, "modelPath", patch.Path)
	addNullable(&b, "apiKey", patch.APIKey)
	if err := b.exec(ctx, r.db, r.entity(), r.table, "modelId", id); err != nil {
		return err
	}
	r.logger.Debug("updated model", "kind", r.kind, "model_id", id)
	return nil
}

// SetDefault makes modelID the only default model of projectID. Clearing the
// previous default and setting the new one happen in one transaction; when
// modelID does not belong to projectID nothing changes and ErrNotFound is
// returned.
func (r *ModelRepository) SetDefault(ctx context.Context, projectID, modelID int64) error {
	err := r.db.WithTx(ctx, func(tx *database.DB) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE "+r.table+" SET isDefault = 0 WHERE projectId = ? AND isDefault = 1",
			projectID); err != nil {
			return storageError("clearing default "+r.entity(), err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE "+r.table+" SET isDefault = 1, updated_at = CURRENT_TIMESTAMP WHERE modelId = ? AND projectId = ?",
			modelID, projectID)
		if err != nil {
			return storageError("setting default "+r.entity(), err)
		}
		return expectRow(res, r.entity(), modelID)
	})
	if err != nil {
		return err
	}
	r.logger.Info("set default model", "kind", r.kind, "project_id", projectID, "model_id", modelID)
	return nil
}

func (r *ModelRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, r.db, r.entity(), r.table, "modelId", id); err != nil {
		return err
	}
	r.logger.Debug("deleted model", "kind", r.kind, "model_id", id)
	return nil
}

func (r *ModelRepository) scan(s scanner) (*model.Model, error) {
	var (
		m                    model.Model
		path, apiKey         sql.NullString
		isDefault            sql.NullInt64
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&m.ID, &m.ProjectID, &m.Name, &path, &apiKey, &isDefault, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.Kind = r.kind
	m.Path = nullToStringPtr(path)
	m.APIKey = nullToStringPtr(apiKey)
	m.IsDefault = isDefault.Valid && isDefault.Int64 != 0
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	return &m, nil
}
