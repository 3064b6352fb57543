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

// TaskRepository implements project.TaskRepository
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, t *project.Task) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, priority, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.StartDate, t.EndDate, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	t.CreatedAt = now
	t.UpdatedAt = now

	return nil
}

func scanTask(row pgx.Row) (*project.Task, error) {
	var t project.Task
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.StartDate, &t.EndDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*project.Task, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, project_id, title, description, status, priority, start_date, end_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`, id)
	return scanTask(row)
}

// List retrieves tasks, optionally filtered by project
func (r *TaskRepository) List(ctx context.Context, projectID string) ([]*project.Task, error) {
	query := `
		SELECT id, project_id, title, description, status, priority, start_date, end_date, created_at, updated_at
		FROM tasks
	`
	var args []any
	if projectID != "" {
		query += ` WHERE project_id = $1`
		args = append(args, projectID)
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*project.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Update updates task information
func (r *TaskRepository) Update(ctx context.Context, t *project.Task) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE tasks SET
			title = $2,
			description = $3,
			status = $4,
			priority = $5,
			start_date = $6,
			end_date = $7,
			updated_at = NOW()
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Status, t.Priority, t.StartDate, t.EndDate)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return project.ErrTaskNotFound
	}

	return nil
}

// Delete removes a task; milestones, incidences, comments and memberships cascade
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return project.ErrTaskNotFound
	}

	return nil
}
