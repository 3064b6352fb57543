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
	"github.com/openboard/openboard/internal/activity"
)

// ActivityRepository implements activity.Repository
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create stores an activity entry
func (r *ActivityRepository) Create(ctx context.Context, entry *activity.Entry) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO activity_events (id, agent_id, entity_type, entity_id, action, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.ID, entry.AgentID, entry.EntityType, entry.EntityID, entry.Action, entry.Description, now)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	entry.CreatedAt = now
	return nil
}

// GetByID retrieves an entry by ID
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*activity.Entry, error) {
	var e activity.Entry
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, agent_id, entity_type, entity_id, action, description, created_at
		FROM activity_events
		WHERE id = $1
	`, id).Scan(&e.ID, &e.AgentID, &e.EntityType, &e.EntityID, &e.Action, &e.Description, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, activity.ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get activity entry: %w", err)
	}
	return &e, nil
}

// List retrieves entries newest first, applying the filter
func (r *ActivityRepository) List(ctx context.Context, filter activity.Filter) ([]*activity.Entry, error) {
	query := `
		SELECT id, agent_id, entity_type, entity_id, action, description, created_at
		FROM activity_events
	`
	var conds []string
	var args []any
	if filter.AgentID != "" {
		args = append(args, filter.AgentID)
		conds = append(conds, fmt.Sprintf("agent_id = $%d", len(args)))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conds = append(conds, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != "" {
		args = append(args, filter.EntityID)
		conds = append(conds, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*activity.Entry
	for rows.Next() {
		var e activity.Entry
		if err := rows.Scan(&e.ID, &e.AgentID, &e.EntityType, &e.EntityID, &e.Action, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Delete removes an entry
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM activity_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return activity.ErrEntryNotFound
	}
	return nil
}

// DeleteOlderThan removes entries created before the cutoff
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.pool.Exec(ctx, `DELETE FROM activity_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity entries: %w", err)
	}
	return result.RowsAffected(), nil
}
