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

// Package activity records the user-visible activity feed: who did what to
// which entity. It is a domain feature distinct from the operational audit
// log.
package activity

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrEntryNotFound = errors.New("activity entry not found")
)

// Actions
const (
	ActionCreated       = "CREATED"
	ActionUpdated       = "UPDATED"
	ActionDeleted       = "DELETED"
	ActionStatusChanged = "STATUS_CHANGED"
	ActionUserAssigned  = "USER_ASSIGNED"
	ActionUserRemoved   = "USER_REMOVED"
	ActionCompleted     = "COMPLETED"
	ActionResolved      = "RESOLVED"
)

// Entity types
const (
	EntityProject   = "project"
	EntityTask      = "task"
	EntityMilestone = "milestone"
	EntityIncidence = "incidence"
	EntityComment   = "comment"
)

// Entry is one activity feed record.
type Entry struct {
	ID          string
	AgentID     string
	EntityType  string
	EntityID    string
	Action      string
	Description string
	CreatedAt   time.Time
}

// Filter narrows activity listings. Zero values match everything.
type Filter struct {
	AgentID    string
	EntityType string
	EntityID   string
	Limit      int
}

// Repository defines the interface for activity persistence
type Repository interface {
	// Create stores an entry
	Create(ctx context.Context, entry *Entry) error

	// GetByID retrieves an entry by ID
	GetByID(ctx context.Context, id string) (*Entry, error)

	// List retrieves entries newest first, applying the filter
	List(ctx context.Context, filter Filter) ([]*Entry, error)

	// Delete removes an entry
	Delete(ctx context.Context, id string) error

	// DeleteOlderThan removes entries created before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
