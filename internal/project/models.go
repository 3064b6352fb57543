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

// Package project holds the work-element domain: projects, tasks,
// milestones, incidences, comments, and the memberships that tie users to
// projects and tasks.
package project

import (
	"context"
	"errors"
	"time"

	"github.com/openboard/openboard/internal/rbac"
)

// Domain errors
var (
	ErrProjectNotFound         = errors.New("project not found")
	ErrTaskNotFound            = errors.New("task not found")
	ErrMilestoneNotFound       = errors.New("milestone not found")
	ErrIncidenceNotFound       = errors.New("incidence not found")
	ErrCommentNotFound         = errors.New("comment not found")
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrMembershipAlreadyExists = errors.New("membership already exists")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidPriority         = errors.New("invalid priority")
	ErrInvalidType             = errors.New("invalid type")
)

// Project statuses
const (
	StatusActive   = "active"
	StatusFinished = "finished"
	StatusOnHold   = "on-hold"
)

// Project types
const (
	TypeInternal = "internal"
	TypeExternal = "external"
)

// Task and incidence priorities
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical" // incidences only
)

// Task statuses
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Incidence statuses
const (
	IncidenceOpen       = "open"
	IncidenceInProgress = "in_progress"
	IncidenceResolved   = "resolved"
	IncidenceClosed     = "closed"
)

// Project is the top-level work container.
type Project struct {
	ID          string
	Title       string
	Description string
	Type        string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Task belongs to exactly one project.
type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description string
	Status      string
	Priority    string
	StartDate   *time.Time
	EndDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Milestone marks a checkpoint on a task.
type Milestone struct {
	ID          string
	TaskID      string
	Title       string
	Description string
	IsCompleted bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Incidence is a problem report attached to a task.
type Incidence struct {
	ID          string
	TaskID      string
	Title       string
	Description string
	Status      string
	Priority    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is authored text on a task.
type Comment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a user's membership in a project, carrying their project role.
type Member struct {
	UserID    string
	ProjectID string
	Role      rbac.ProjectRole
	CreatedAt time.Time
}

// TaskMember is a user's membership on a task.
type TaskMember struct {
	UserID    string
	TaskID    string
	Role      rbac.TaskRole
	CreatedAt time.Time
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Update(ctx context.Context, p *Project) error
	// Delete removes the project; memberships and tasks cascade.
	Delete(ctx context.Context, id string) error
}

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	// List returns all tasks, or only a project's tasks when projectID is
	// non-empty.
	List(ctx context.Context, projectID string) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}

// MilestoneRepository defines the interface for milestone persistence
type MilestoneRepository interface {
	Create(ctx context.Context, m *Milestone) error
	GetByID(ctx context.Context, id string) (*Milestone, error)
	List(ctx context.Context) ([]*Milestone, error)
	Update(ctx context.Context, m *Milestone) error
	Delete(ctx context.Context, id string) error
}

// IncidenceRepository defines the interface for incidence persistence
type IncidenceRepository interface {
	Create(ctx context.Context, i *Incidence) error
	GetByID(ctx context.Context, id string) (*Incidence, error)
	List(ctx context.Context) ([]*Incidence, error)
	Update(ctx context.Context, i *Incidence) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	List(ctx context.Context) ([]*Comment, error)
	Update(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository defines the interface for project membership persistence
type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, userID, projectID string) (*Member, error)
	ListByProject(ctx context.Context, projectID string) ([]*Member, error)
	UpdateRole(ctx context.Context, userID, projectID string, role rbac.ProjectRole) error
	Delete(ctx context.Context, userID, projectID string) error
}

// TaskMemberRepository defines the interface for task membership persistence
type TaskMemberRepository interface {
	Create(ctx context.Context, m *TaskMember) error
	Get(ctx context.Context, userID, taskID string) (*TaskMember, error)
	ListByTask(ctx context.Context, taskID string) ([]*TaskMember, error)
	UpdateRole(ctx context.Context, userID, taskID string, role rbac.TaskRole) error
	Delete(ctx context.Context, userID, taskID string) error
}
