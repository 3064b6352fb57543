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

package activity

import (
	"context"
	"fmt"

	"github.com/openboard/openboard/internal/id"
)

const defaultListLimit = 50

// Service provides activity feed business logic
type Service struct {
	repo Repository
}

// NewService creates a new activity service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores an activity entry.
func (s *Service) Record(ctx context.Context, agentID, entityType, entityID, action, description string) (*Entry, error) {
	entry := &Entry{
		ID:          id.NewUUIDv7(),
		AgentID:     agentID,
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return entry, nil
}

// List retrieves entries newest first. A zero limit defaults to 50.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}

// Get retrieves a single entry
func (s *Service) Get(ctx context.Context, entryID string) (*Entry, error) {
	return s.repo.GetByID(ctx, entryID)
}

// Delete removes an entry
func (s *Service) Delete(ctx context.Context, entryID string) error {
	if _, err := s.repo.GetByID(ctx, entryID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, entryID)
}

// Typed helpers mirroring the feed texts the frontend renders.

func (s *Service) ProjectCreated(ctx context.Context, userID, projectID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityProject, projectID, ActionCreated,
		fmt.Sprintf("Created project %q", title))
}

func (s *Service) ProjectUpdated(ctx context.Context, userID, projectID, title, changes string) (*Entry, error) {
	return s.Record(ctx, userID, EntityProject, projectID, ActionUpdated,
		fmt.Sprintf("Updated project %q: %s", title, changes))
}

func (s *Service) ProjectDeleted(ctx context.Context, userID, projectID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityProject, projectID, ActionDeleted,
		fmt.Sprintf("Deleted project %q", title))
}

func (s *Service) TaskCreated(ctx context.Context, userID, taskID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityTask, taskID, ActionCreated,
		fmt.Sprintf("Created task %q", title))
}

func (s *Service) TaskUpdated(ctx context.Context, userID, taskID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityTask, taskID, ActionUpdated,
		fmt.Sprintf("Updated task %q", title))
}

func (s *Service) TaskDeleted(ctx context.Context, userID, taskID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityTask, taskID, ActionDeleted,
		fmt.Sprintf("Deleted task %q", title))
}

func (s *Service) TaskStatusChanged(ctx context.Context, userID, taskID, title, status string) (*Entry, error) {
	return s.Record(ctx, userID, EntityTask, taskID, ActionStatusChanged,
		fmt.Sprintf("Changed status of task %q to %s", title, status))
}

func (s *Service) UserAssignedToProject(ctx context.Context, actorID, projectID, assigneeID, role string) (*Entry, error) {
	return s.Record(ctx, actorID, EntityProject, projectID, ActionUserAssigned,
		fmt.Sprintf("Assigned user %s as %s", assigneeID, role))
}

func (s *Service) UserRemovedFromProject(ctx context.Context, actorID, projectID, removedID string) (*Entry, error) {
	return s.Record(ctx, actorID, EntityProject, projectID, ActionUserRemoved,
		fmt.Sprintf("Removed user %s from project", removedID))
}

func (s *Service) UserAssignedToTask(ctx context.Context, actorID, taskID, assigneeID, role string) (*Entry, error) {
	return s.Record(ctx, actorID, EntityTask, taskID, ActionUserAssigned,
		fmt.Sprintf("Assigned user %s as %s", assigneeID, role))
}

func (s *Service) UserRemovedFromTask(ctx context.Context, actorID, taskID, removedID string) (*Entry, error) {
	return s.Record(ctx, actorID, EntityTask, taskID, ActionUserRemoved,
		fmt.Sprintf("Removed user %s from task", removedID))
}

func (s *Service) CommentCreated(ctx context.Context, userID, commentID, taskTitle string) (*Entry, error) {
	return s.Record(ctx, userID, EntityComment, commentID, ActionCreated,
		fmt.Sprintf("Commented on task %q", taskTitle))
}

func (s *Service) MilestoneCompleted(ctx context.Context, userID, milestoneID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityMilestone, milestoneID, ActionCompleted,
		fmt.Sprintf("Completed milestone %q", title))
}

func (s *Service) IncidenceCreated(ctx context.Context, userID, incidenceID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityIncidence, incidenceID, ActionCreated,
		fmt.Sprintf("Reported incidence %q", title))
}

func (s *Service) IncidenceResolved(ctx context.Context, userID, incidenceID, title string) (*Entry, error) {
	return s.Record(ctx, userID, EntityIncidence, incidenceID, ActionResolved,
		fmt.Sprintf("Resolved incidence %q", title))
}
