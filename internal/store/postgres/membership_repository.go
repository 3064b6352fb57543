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

	"github.com/jackc/pgx/v5"
	"github.com/openboard/openboard/internal/project"
	"github.com/openboard/openboard/internal/rbac"
)

// MembershipRepository implements project.MemberRepository,
// project.TaskMemberRepository, and rbac.MembershipResolver over the
// user_projects and user_tasks tables.
type MembershipRepository struct {
	db *DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// Create adds a project membership
func (r *MembershipRepository) Create(ctx context.Context, m *project.Member) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO user_projects (user_id, project_id, role)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, m.UserID, m.ProjectID, string(m.Role)).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// Get retrieves a project membership; nil means the user is not a member
func (r *MembershipRepository) Get(ctx context.Context, userID, projectID string) (*project.Member, error) {
	var m project.Member
	var role string
	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, project_id, role, created_at
		FROM user_projects
		WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&m.UserID, &m.ProjectID, &role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	m.Role = rbac.ProjectRole(role)
	return &m, nil
}

// ListByProject retrieves a project's memberships
func (r *MembershipRepository) ListByProject(ctx context.Context, projectID string) ([]*project.Member, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT user_id, project_id, role, created_at
		FROM user_projects
		WHERE project_id = $1
		ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []*project.Member
	for rows.Next() {
		var m project.Member
		var role string
		if err := rows.Scan(&m.UserID, &m.ProjectID, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Role = rbac.ProjectRole(role)
		members = append(members, &m)
	}
	return members, rows.Err()
}

// UpdateRole replaces a member's project role
func (r *MembershipRepository) UpdateRole(ctx context.Context, userID, projectID string, role rbac.ProjectRole) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE user_projects SET role = $3
		WHERE user_id = $1 AND project_id = $2
	`, userID, projectID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update membership role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrMembershipNotFound
	}
	return nil
}

// Delete removes a project membership
func (r *MembershipRepository) Delete(ctx context.Context, userID, projectID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_projects WHERE user_id = $1 AND project_id = $2
	`, userID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrMembershipNotFound
	}
	return nil
}

// TaskMemberRepository accessors share the same backing store.

type taskMembers MembershipRepository

// TaskMembers exposes the task membership half of the repository.
func (r *MembershipRepository) TaskMembers() project.TaskMemberRepository {
	return (*taskMembers)(r)
}

func (r *taskMembers) Create(ctx context.Context, m *project.TaskMember) error {
	err := r.db.pool.QueryRow(ctx, `
		INSERT INTO user_tasks (user_id, task_id, role)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, m.UserID, m.TaskID, string(m.Role)).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task membership: %w", err)
	}
	return nil
}

func (r *taskMembers) Get(ctx context.Context, userID, taskID string) (*project.TaskMember, error) {
	var m project.TaskMember
	var role string
	err := r.db.pool.QueryRow(ctx, `
		SELECT user_id, task_id, role, created_at
		FROM user_tasks
		WHERE user_id = $1 AND task_id = $2
	`, userID, taskID).Scan(&m.UserID, &m.TaskID, &role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task membership: %w", err)
	}
	m.Role = rbac.TaskRole(role)
	return &m, nil
}

func (r *taskMembers) ListByTask(ctx context.Context, taskID string) ([]*project.TaskMember, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT user_id, task_id, role, created_at
		FROM user_tasks
		WHERE task_id = $1
		ORDER BY created_at
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list task memberships: %w", err)
	}
	defer rows.Close()

	var members []*project.TaskMember
	for rows.Next() {
		var m project.TaskMember
		var role string
		if err := rows.Scan(&m.UserID, &m.TaskID, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task membership: %w", err)
		}
		m.Role = rbac.TaskRole(role)
		members = append(members, &m)
	}
	return members, rows.Err()
}

func (r *taskMembers) UpdateRole(ctx context.Context, userID, taskID string, role rbac.TaskRole) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE user_tasks SET role = $3
		WHERE user_id = $1 AND task_id = $2
	`, userID, taskID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update task membership role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrMembershipNotFound
	}
	return nil
}

func (r *taskMembers) Delete(ctx context.Context, userID, taskID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM user_tasks WHERE user_id = $1 AND task_id = $2
	`, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return project.ErrMembershipNotFound
	}
	return nil
}

// rbac.MembershipResolver

// ResolveMembership looks up a user's project membership; nil means absent
func (r *MembershipRepository) ResolveMembership(ctx context.Context, userID, projectID string) (*rbac.Membership, error) {
	m, err := r.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return &rbac.Membership{UserID: m.UserID, ProjectID: m.ProjectID, Role: m.Role}, nil
}

// ResolveTaskMembership looks up a user's task membership; nil means absent
func (r *MembershipRepository) ResolveTaskMembership(ctx context.Context, userID, taskID string) (*rbac.TaskMembership, error) {
	m, err := r.TaskMembers().Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	return &rbac.TaskMembership{UserID: m.UserID, TaskID: m.TaskID, Role: m.Role}, nil
}

// ResolveProject reports whether a project exists
func (r *MembershipRepository) ResolveProject(ctx context.Context, projectID string) (bool, error) {
	var exists bool
	err := r.db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to resolve project: %w", err)
	}
	return exists, nil
}

// ResolveTask reports whether a task exists and which project owns it
func (r *MembershipRepository) ResolveTask(ctx context.Context, taskID string) (rbac.TaskRef, error) {
	var projectID string
	err := r.db.pool.QueryRow(ctx,
		`SELECT project_id FROM tasks WHERE id = $1`, taskID,
	).Scan(&projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rbac.TaskRef{}, nil
		}
		return rbac.TaskRef{}, fmt.Errorf("failed to resolve task: %w", err)
	}
	return rbac.TaskRef{Exists: true, ProjectID: projectID}, nil
}
