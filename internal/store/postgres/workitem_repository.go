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

// MilestoneRepository implements project.MilestoneRepository
type MilestoneRepository struct {
	db *DB
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(db *DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Create(ctx context.Context, m *project.Milestone) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO milestones (id, task_id, title, description, is_completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.TaskID, m.Title, m.Description, m.IsCompleted, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert milestone: %w", err)
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

func scanMilestone(row pgx.Row) (*project.Milestone, error) {
	var m project.Milestone
	err := row.Scan(&m.ID, &m.TaskID, &m.Title, &m.Description, &m.IsCompleted, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	return &m, nil
}

func (r *MilestoneRepository) GetByID(ctx context.Context, id string) (*project.Milestone, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, task_id, title, description, is_completed, created_at, updated_at
		FROM milestones WHERE id = $1
	`, id)
	return scanMilestone(row)
}

func (r *MilestoneRepository) List(ctx context.Context) ([]*project.Milestone, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, task_id, title, description, is_completed, created_at, updated_at
		FROM milestones ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*project.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *MilestoneRepository) Update(ctx context.Context, m *project.Milestone) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE milestones SET title = $2, description = $3, is_completed = $4, updated_at = NOW()
		WHERE id = $1
	`, m.ID, m.Title, m.Description, m.IsCompleted)
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrMilestoneNotFound
	}
	return nil
}

func (r *MilestoneRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrMilestoneNotFound
	}
	return nil
}

// IncidenceRepository implements project.IncidenceRepository
type IncidenceRepository struct {
	db *DB
}

// NewIncidenceRepository creates a new incidence repository
func NewIncidenceRepository(db *DB) *IncidenceRepository {
	return &IncidenceRepository{db: db}
}

func (r *IncidenceRepository) Create(ctx context.Context, i *project.Incidence) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO incidences (id, task_id, title, description, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, i.ID, i.TaskID, i.Title, i.Description, i.Status, i.Priority, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert incidence: %w", err)
	}
	i.CreatedAt = now
	i.UpdatedAt = now
	return nil
}

func scanIncidence(row pgx.Row) (*project.Incidence, error) {
	var i project.Incidence
	err := row.Scan(&i.ID, &i.TaskID, &i.Title, &i.Description, &i.Status, &i.Priority, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrIncidenceNotFound
		}
		return nil, fmt.Errorf("failed to get incidence: %w", err)
	}
	return &i, nil
}

func (r *IncidenceRepository) GetByID(ctx context.Context, id string) (*project.Incidence, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, task_id, title, description, status, priority, created_at, updated_at
		FROM incidences WHERE id = $1
	`, id)
	return scanIncidence(row)
}

func (r *IncidenceRepository) List(ctx context.Context) ([]*project.Incidence, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, task_id, title, description, status, priority, created_at, updated_at
		FROM incidences ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidences: %w", err)
	}
	defer rows.Close()

	var incidences []*project.Incidence
	for rows.Next() {
		i, err := scanIncidence(rows)
		if err != nil {
			return nil, err
		}
		incidences = append(incidences, i)
	}
	return incidences, rows.Err()
}

func (r *IncidenceRepository) Update(ctx context.Context, i *project.Incidence) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE incidences SET title = $2, description = $3, status = $4, priority = $5, updated_at = NOW()
		WHERE id = $1
	`, i.ID, i.Title, i.Description, i.Status, i.Priority)
	if err != nil {
		return fmt.Errorf("failed to update incidence: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrIncidenceNotFound
	}
	return nil
}

func (r *IncidenceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM incidences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incidence: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrIncidenceNotFound
	}
	return nil
}

// CommentRepository implements project.CommentRepository
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, c *project.Comment) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO comments (id, task_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.TaskID, c.AuthorID, c.Content, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

func scanComment(row pgx.Row) (*project.Comment, error) {
	var c project.Comment
	err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*project.Comment, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT id, task_id, author_id, content, created_at, updated_at
		FROM comments WHERE id = $1
	`, id)
	return scanComment(row)
}

func (r *CommentRepository) List(ctx context.Context) ([]*project.Comment, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, task_id, author_id, content, created_at, updated_at
		FROM comments ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*project.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Update(ctx context.Context, c *project.Comment) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE comments SET content = $2, updated_at = NOW()
		WHERE id = $1
	`, c.ID, c.Content)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrCommentNotFound
	}
	return nil
}
