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

package project

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openboard/openboard/internal/activity"
	"github.com/openboard/openboard/internal/id"
	"github.com/openboard/openboard/internal/observability/logger"
	"github.com/openboard/openboard/internal/rbac"
)

// Service provides work-element business logic. Mutations record activity
// entries best effort: a failed activity write is logged and never fails the
// mutation itself.
type Service struct {
	projects    ProjectRepository
	tasks       TaskRepository
	milestones  MilestoneRepository
	incidences  IncidenceRepository
	comments    CommentRepository
	members     MemberRepository
	taskMembers TaskMemberRepository
	activity    *activity.Service
}

// NewService creates a new work-element service
func NewService(
	projects ProjectRepository,
	tasks TaskRepository,
	milestones MilestoneRepository,
	incidences IncidenceRepository,
	comments CommentRepository,
	members MemberRepository,
	taskMembers TaskMemberRepository,
	activityService *activity.Service,
) *Service {
	return &Service{
		projects:    projects,
		tasks:       tasks,
		milestones:  milestones,
		incidences:  incidences,
		comments:    comments,
		members:     members,
		taskMembers: taskMembers,
		activity:    activityService,
	}
}

func (s *Service) recordActivity(ctx context.Context, record func() error) {
	if err := record(); err != nil {
		slog.WarnContext(ctx, "failed to record activity", logger.Error(err))
	}
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

// CreateProjectInput carries the fields for project creation.
type CreateProjectInput struct {
	Title       string
	Description string
	Type        string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateProjectInput carries a partial project update.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Type        *string
	Status      *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func validProjectStatus(s string) bool {
	return s == StatusActive || s == StatusFinished || s == StatusOnHold
}

func validProjectType(t string) bool {
	return t == TypeInternal || t == TypeExternal
}

// ListProjects returns all projects
func (s *Service) ListProjects(ctx context.Context) ([]*Project, error) {
	return s.projects.List(ctx)
}

// GetProject retrieves a project by ID
func (s *Service) GetProject(ctx context.Context, projectID string) (*Project, error) {
	return s.projects.GetByID(ctx, projectID)
}

// CreateProject creates a project and records the activity.
func (s *Service) CreateProject(ctx context.Context, input CreateProjectInput, actorID string) (*Project, error) {
	if input.Status == "" {
		input.Status = StatusActive
	}
	if input.Type == "" {
		input.Type = TypeInternal
	}
	if !validProjectStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if !validProjectType(input.Type) {
		return nil, ErrInvalidType
	}

	p := &Project{
		ID:          id.NewUUIDv7(),
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Status:      input.Status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	// The creator owns the project; without this row nobody below admin
	// could administer it.
	if actorID != "" {
		m := &Member{UserID: actorID, ProjectID: p.ID, Role: rbac.ProjectOwner}
		if err := s.members.Create(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to assign project owner: %w", err)
		}
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.ProjectCreated(ctx, actorID, p.ID, p.Title)
		return err
	})
	return p, nil
}

// UpdateProject applies a partial update and records the activity.
func (s *Service) UpdateProject(ctx context.Context, projectID string, input UpdateProjectInput, actorID string) (*Project, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var changes []string
	if input.Title != nil {
		p.Title = *input.Title
		changes = append(changes, "title")
	}
	if input.Description != nil {
		p.Description = *input.Description
		changes = append(changes, "description")
	}
	if input.Type != nil {
		if !validProjectType(*input.Type) {
			return nil, ErrInvalidType
		}
		p.Type = *input.Type
		changes = append(changes, "type")
	}
	if input.Status != nil {
		if !validProjectStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		p.Status = *input.Status
		changes = append(changes, "status")
	}
	if input.StartDate != nil {
		p.StartDate = input.StartDate
		changes = append(changes, "startDate")
	}
	if input.EndDate != nil {
		p.EndDate = input.EndDate
		changes = append(changes, "endDate")
	}

	if err := s.projects.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.ProjectUpdated(ctx, actorID, p.ID, p.Title, joinChanges(changes))
		return err
	})
	return p, nil
}

// DeleteProject removes a project. Memberships and tasks cascade in storage.
func (s *Service) DeleteProject(ctx context.Context, projectID, actorID string) error {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.ProjectDeleted(ctx, actorID, p.ID, p.Title)
		return err
	})
	return nil
}

// -----------------------------------------------------------------------------
// Tasks
// -----------------------------------------------------------------------------

// CreateTaskInput carries the fields for task creation.
type CreateTaskInput struct {
	ProjectID   string
	Title       string
	Description string
	Priority    string
	StartDate   *time.Time
	EndDate     *time.Time
}

// UpdateTaskInput carries a partial task update.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func validTaskStatus(s string) bool {
	return s == TaskStatusPending || s == TaskStatusInProgress || s == TaskStatusDone
}

func validTaskPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ListTasks returns all tasks, optionally filtered by project.
func (s *Service) ListTasks(ctx context.Context, projectID string) ([]*Task, error) {
	return s.tasks.List(ctx, projectID)
}

// GetTask retrieves a task by ID
func (s *Service) GetTask(ctx context.Context, taskID string) (*Task, error) {
	return s.tasks.GetByID(ctx, taskID)
}

// CreateTask creates a task under a project.
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput, actorID string) (*Task, error) {
	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		return nil, err
	}
	if !validTaskPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	t := &Task{
		ID:          id.NewUUIDv7(),
		ProjectID:   input.ProjectID,
		Title:       input.Title,
		Description: input.Description,
		Status:      TaskStatusPending,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.TaskCreated(ctx, actorID, t.ID, t.Title)
		return err
	})
	return t, nil
}

// UpdateTask applies a partial update. A status transition is recorded as a
// status change, other edits as a plain update.
func (s *Service) UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput, actorID string) (*Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	statusChanged := false
	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = *input.Description
	}
	if input.Status != nil && *input.Status != t.Status {
		if !validTaskStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		t.Status = *input.Status
		statusChanged = true
	}
	if input.Priority != nil {
		if !validTaskPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		t.Priority = *input.Priority
	}
	if input.StartDate != nil {
		t.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = input.EndDate
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.recordActivity(ctx, func() error {
		if statusChanged {
			_, err := s.activity.TaskStatusChanged(ctx, actorID, t.ID, t.Title, t.Status)
			return err
		}
		_, err := s.activity.TaskUpdated(ctx, actorID, t.ID, t.Title)
		return err
	})
	return t, nil
}

// DeleteTask removes a task. Task memberships cascade in storage.
func (s *Service) DeleteTask(ctx context.Context, taskID, actorID string) error {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.TaskDeleted(ctx, actorID, t.ID, t.Title)
		return err
	})
	return nil
}

// -----------------------------------------------------------------------------
// Milestones
// -----------------------------------------------------------------------------

// CreateMilestoneInput carries the fields for milestone creation.
type CreateMilestoneInput struct {
	TaskID      string
	Title       string
	Description string
	IsCompleted bool
}

// UpdateMilestoneInput carries a partial milestone update.
type UpdateMilestoneInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// ListMilestones returns all milestones
func (s *Service) ListMilestones(ctx context.Context) ([]*Milestone, error) {
	return s.milestones.List(ctx)
}

// GetMilestone retrieves a milestone by ID
func (s *Service) GetMilestone(ctx context.Context, milestoneID string) (*Milestone, error) {
	return s.milestones.GetByID(ctx, milestoneID)
}

// CreateMilestone creates a milestone on a task.
func (s *Service) CreateMilestone(ctx context.Context, input CreateMilestoneInput, actorID string) (*Milestone, error) {
	if _, err := s.tasks.GetByID(ctx, input.TaskID); err != nil {
		return nil, err
	}

	m := &Milestone{
		ID:          id.NewUUIDv7(),
		TaskID:      input.TaskID,
		Title:       input.Title,
		Description: input.Description,
		IsCompleted: input.IsCompleted,
	}
	if err := s.milestones.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}
	return m, nil
}

// UpdateMilestone applies a partial update; a completion transition is
// recorded in the activity feed.
func (s *Service) UpdateMilestone(ctx context.Context, milestoneID string, input UpdateMilestoneInput, actorID string) (*Milestone, error) {
	m, err := s.milestones.GetByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	completed := false
	if input.Title != nil {
		m.Title = *input.Title
	}
	if input.Description != nil {
		m.Description = *input.Description
	}
	if input.IsCompleted != nil {
		completed = *input.IsCompleted && !m.IsCompleted
		m.IsCompleted = *input.IsCompleted
	}

	if err := s.milestones.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}

	if completed {
		s.recordActivity(ctx, func() error {
			_, err := s.activity.MilestoneCompleted(ctx, actorID, m.ID, m.Title)
			return err
		})
	}
	return m, nil
}

// DeleteMilestone removes a milestone
func (s *Service) DeleteMilestone(ctx context.Context, milestoneID string) error {
	if _, err := s.milestones.GetByID(ctx, milestoneID); err != nil {
		return err
	}
	return s.milestones.Delete(ctx, milestoneID)
}

// -----------------------------------------------------------------------------
// Incidences
// -----------------------------------------------------------------------------

// CreateIncidenceInput carries the fields for incidence creation.
type CreateIncidenceInput struct {
	TaskID      string
	Title       string
	Description string
	Status      string
	Priority    string
}

// UpdateIncidenceInput carries a partial incidence update.
type UpdateIncidenceInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

func validIncidenceStatus(s string) bool {
	return s == IncidenceOpen || s == IncidenceInProgress || s == IncidenceResolved || s == IncidenceClosed
}

func validIncidencePriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityCritical
}

// ListIncidences returns all incidences
func (s *Service) ListIncidences(ctx context.Context) ([]*Incidence, error) {
	return s.incidences.List(ctx)
}

// GetIncidence retrieves an incidence by ID
func (s *Service) GetIncidence(ctx context.Context, incidenceID string) (*Incidence, error) {
	return s.incidences.GetByID(ctx, incidenceID)
}

// CreateIncidence reports an incidence on a task.
func (s *Service) CreateIncidence(ctx context.Context, input CreateIncidenceInput, actorID string) (*Incidence, error) {
	if _, err := s.tasks.GetByID(ctx, input.TaskID); err != nil {
		return nil, err
	}
	if input.Status == "" {
		input.Status = IncidenceOpen
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	if !validIncidenceStatus(input.Status) {
		return nil, ErrInvalidStatus
	}
	if !validIncidencePriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	i := &Incidence{
		ID:          id.NewUUIDv7(),
		TaskID:      input.TaskID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
	}
	if err := s.incidences.Create(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to create incidence: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.IncidenceCreated(ctx, actorID, i.ID, i.Title)
		return err
	})
	return i, nil
}

// UpdateIncidence applies a partial update; a transition to resolved is
// recorded in the activity feed.
func (s *Service) UpdateIncidence(ctx context.Context, incidenceID string, input UpdateIncidenceInput, actorID string) (*Incidence, error) {
	i, err := s.incidences.GetByID(ctx, incidenceID)
	if err != nil {
		return nil, err
	}

	resolved := false
	if input.Title != nil {
		i.Title = *input.Title
	}
	if input.Description != nil {
		i.Description = *input.Description
	}
	if input.Status != nil {
		if !validIncidenceStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		resolved = *input.Status == IncidenceResolved && i.Status != IncidenceResolved
		i.Status = *input.Status
	}
	if input.Priority != nil {
		if !validIncidencePriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		i.Priority = *input.Priority
	}

	if err := s.incidences.Update(ctx, i); err != nil {
		return nil, fmt.Errorf("failed to update incidence: %w", err)
	}

	if resolved {
		s.recordActivity(ctx, func() error {
			_, err := s.activity.IncidenceResolved(ctx, actorID, i.ID, i.Title)
			return err
		})
	}
	return i, nil
}

// DeleteIncidence removes an incidence
func (s *Service) DeleteIncidence(ctx context.Context, incidenceID string) error {
	if _, err := s.incidences.GetByID(ctx, incidenceID); err != nil {
		return err
	}
	return s.incidences.Delete(ctx, incidenceID)
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

// ListComments returns all comments
func (s *Service) ListComments(ctx context.Context) ([]*Comment, error) {
	return s.comments.List(ctx)
}

// GetComment retrieves a comment by ID
func (s *Service) GetComment(ctx context.Context, commentID string) (*Comment, error) {
	return s.comments.GetByID(ctx, commentID)
}

// CreateComment adds a comment to a task.
func (s *Service) CreateComment(ctx context.Context, taskID, authorID, content string) (*Comment, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	c := &Comment{
		ID:       id.NewUUIDv7(),
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.CommentCreated(ctx, authorID, c.ID, t.Title)
		return err
	})
	return c, nil
}

// UpdateComment replaces a comment's content
func (s *Service) UpdateComment(ctx context.Context, commentID, content string) (*Comment, error) {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	c.Content = content
	if err := s.comments.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment
func (s *Service) DeleteComment(ctx context.Context, commentID string) error {
	if _, err := s.comments.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.comments.Delete(ctx, commentID)
}

// -----------------------------------------------------------------------------
// Memberships
// -----------------------------------------------------------------------------

// ListMembers returns a project's memberships
func (s *Service) ListMembers(ctx context.Context, projectID string) ([]*Member, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.members.ListByProject(ctx, projectID)
}

// AssignMember adds a user to a project with a role.
func (s *Service) AssignMember(ctx context.Context, projectID, userID string, role rbac.ProjectRole, actorID string) (*Member, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown project role %q", role)
	}
	if existing, err := s.members.Get(ctx, userID, projectID); err == nil && existing != nil {
		return nil, ErrMembershipAlreadyExists
	}

	m := &Member{UserID: userID, ProjectID: projectID, Role: role}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to assign member: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.UserAssignedToProject(ctx, actorID, projectID, userID, string(role))
		return err
	})
	return m, nil
}

// UpdateMemberRole replaces a member's project role.
func (s *Service) UpdateMemberRole(ctx context.Context, projectID, userID string, role rbac.ProjectRole, actorID string) (*Member, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown project role %q", role)
	}
	m, err := s.members.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMembershipNotFound
	}
	if err := s.members.UpdateRole(ctx, userID, projectID, role); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	m.Role = role

	s.recordActivity(ctx, func() error {
		_, err := s.activity.UserAssignedToProject(ctx, actorID, projectID, userID, string(role))
		return err
	})
	return m, nil
}

// RemoveMember removes a user from a project.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID, actorID string) error {
	m, err := s.members.Get(ctx, userID, projectID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMembershipNotFound
	}
	if err := s.members.Delete(ctx, userID, projectID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.UserRemovedFromProject(ctx, actorID, projectID, userID)
		return err
	})
	return nil
}

// ListTaskMembers returns a task's memberships
func (s *Service) ListTaskMembers(ctx context.Context, taskID string) ([]*TaskMember, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.taskMembers.ListByTask(ctx, taskID)
}

// AssignTaskMember adds a user to a task. An empty role defaults to
// assigned.
func (s *Service) AssignTaskMember(ctx context.Context, taskID, userID string, role rbac.TaskRole, actorID string) (*TaskMember, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	if role == "" {
		role = rbac.TaskAssigned
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown task role %q", role)
	}
	if existing, err := s.taskMembers.Get(ctx, userID, taskID); err == nil && existing != nil {
		return nil, ErrMembershipAlreadyExists
	}

	m := &TaskMember{UserID: userID, TaskID: taskID, Role: role}
	if err := s.taskMembers.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to assign task member: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.UserAssignedToTask(ctx, actorID, taskID, userID, string(role))
		return err
	})
	return m, nil
}

// UpdateTaskMemberRole replaces a task member's role.
func (s *Service) UpdateTaskMemberRole(ctx context.Context, taskID, userID string, role rbac.TaskRole, actorID string) (*TaskMember, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown task role %q", role)
	}
	m, err := s.taskMembers.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMembershipNotFound
	}
	if err := s.taskMembers.UpdateRole(ctx, userID, taskID, role); err != nil {
		return nil, fmt.Errorf("failed to update task member role: %w", err)
	}
	m.Role = role

	s.recordActivity(ctx, func() error {
		_, err := s.activity.UserAssignedToTask(ctx, actorID, taskID, userID, string(role))
		return err
	})
	return m, nil
}

// RemoveTaskMember removes a user from a task.
func (s *Service) RemoveTaskMember(ctx context.Context, taskID, userID, actorID string) error {
	m, err := s.taskMembers.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMembershipNotFound
	}
	if err := s.taskMembers.Delete(ctx, userID, taskID); err != nil {
		return fmt.Errorf("failed to remove task member: %w", err)
	}

	s.recordActivity(ctx, func() error {
		_, err := s.activity.UserRemovedFromTask(ctx, actorID, taskID, userID)
		return err
	})
	return nil
}

func joinChanges(changes []string) string {
	if len(changes) == 0 {
		return "no fields"
	}
	out := changes[0]
	for _, c := range changes[1:] {
		out += ", " + c
	}
	return out
}
