// Copyright 2026 The Openboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/openboard/openboard/internal/project"
)

// ProjectRepository implements project.ProjectRepository
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO projects (id, title, description, type, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Title, p.Description, p.Type, p.Status, p.StartDate, p.EndDate, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now

	return nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Type, &p.Status,
		&p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*project.Project, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, title, description, type, status, start_date, end_date, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id)
	return scanProject(row)
}

// List retrieves all projects
func (r *ProjectRepository) List(ctx context.Context) ([]*project.Project, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, title, description, type, status, start_date, end_date, created_at, updated_at
		FROM projects
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update updates project information
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE projects SET
			title = $2,
			description = $3,
			type = $4,
			status = $5,
			start_date = $6,
			end_date = $7,
			updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Type, p.Status, p.StartDate, p.EndDate)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}

// Delete removes a project; tasks and memberships cascade
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}

	return nil
}
