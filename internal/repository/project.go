package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"videoflow/internal/database"
	"videoflow/internal/model"
)

const projectColumns = "projectId, projectName, created_at, updated_at"

// ProjectRepository stores projects. Deleting a project removes everything
// it owns through the schema's cascading foreign keys.
type ProjectRepository struct {
	db     *database.DB
	logger Logger
}

func NewProjectRepository(db *database.DB, logger Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: orNop(logger)}
}

// Create inserts a project and returns its id.
func (r *ProjectRepository) Create(ctx context.Context, name string) (int64, error) {
	if err := requireText("project", "name", name); err != nil {
		return 0, err
	}
	id, err := insertID(ctx, r.db, "project", "INSERT INTO projects (projectName) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("created project", "project_id", id)
	return id, nil
}

// GetAll returns every project, most recently created first.
func (r *ProjectRepository) GetAll(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY projectId DESC")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	projects, err := collect(rows, scanProject)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// GetByID returns the project, or nil when it does not exist.
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE projectId = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding project: %w", err)
	}
	return p, nil
}

// Update applies the supplied fields. An empty patch issues no statement.
func (r *ProjectRepository) Update(ctx context.Context, id int64, patch model.ProjectPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if name, ok := patch.Name.Get(); ok {
		if err := requireText("project", "name", name); err != nil {
			return err
		}
	}

	var b updateBuilder
	addValue(&b, "projectName", patch.Name)
	if err := b.exec(ctx, r.db, "project", "projects", "projectId", id); err != nil {
		return err
	}
	r.logger.Debug("updated project", "project_id", id)
	return nil
}

// Delete removes the project and, by cascade, all of its children.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	if err := deleteRow(ctx, r.db, "project", "projects", "projectId", id); err != nil {
		return err
	}
	r.logger.Info("deleted project", "project_id", id)
	return nil
}

func scanProject(s scanner) (*model.Project, error) {
	var (
		p                    model.Project
		createdAt, updatedAt sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}
