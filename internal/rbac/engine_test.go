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

package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/openboard/openboard/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockResolver implements rbac.MembershipResolver for testing
type MockResolver struct {
	memberships     map[string]rbac.ProjectRole // "userID/projectID" -> role
	taskMemberships map[string]rbac.TaskRole    // "userID/taskID" -> role
	projects        map[string]bool
	tasks           map[string]string // taskID -> projectID

	err     error
	lookups int
}

func NewMockResolver() *MockResolver {
	return &MockResolver{
		memberships:     make(map[string]rbac.ProjectRole),
		taskMemberships: make(map[string]rbac.TaskRole),
		projects:        make(map[string]bool),
		tasks:           make(map[string]string),
	}
}

func (m *MockResolver) ResolveMembership(ctx context.Context, userID, projectID string) (*rbac.Membership, error) {
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	role, ok := m.memberships[userID+"/"+projectID]
	if !ok {
		return nil, nil
	}
	return &rbac.Membership{UserID: userID, ProjectID: projectID, Role: role}, nil
}

func (m *MockResolver) ResolveTaskMembership(ctx context.Context, userID, taskID string) (*rbac.TaskMembership, error) {
	m.lookups++
	if m.err != nil {
		return nil, m.err
	}
	role, ok := m.taskMemberships[userID+"/"+taskID]
	if !ok {
		return nil, nil
	}
	return &rbac.TaskMembership{UserID: userID, TaskID: taskID, Role: role}, nil
}

func (m *MockResolver) ResolveProject(ctx context.Context, projectID string) (bool, error) {
	m.lookups++
	if m.err != nil {
		return false, m.err
	}
	return m.projects[projectID], nil
}

func (m *MockResolver) ResolveTask(ctx context.Context, taskID string) (rbac.TaskRef, error) {
	m.lookups++
	if m.err != nil {
		return rbac.TaskRef{}, m.err
	}
	projectID, ok := m.tasks[taskID]
	return rbac.TaskRef{Exists: ok, ProjectID: projectID}, nil
}

func TestCheckCapability(t *testing.T) {
	engine := rbac.NewEngine(NewMockResolver())

	d := engine.CheckCapability(nil, rbac.CapCreateProjects)
	assert.False(t, d.Allowed)
	assert.Equal(t, rbac.ReasonUnauthenticated, d.Reason)

	manager := &rbac.Principal{ID: "u1", Role: rbac.GlobalManager}
	assert.True(t, engine.CheckCapability(manager, rbac.CapCreateProjects).Allowed)

	viewer := &rbac.Principal{ID: "u2", Role: rbac.GlobalViewer}
	d = engine.CheckCapability(viewer, rbac.CapCreateProjects)
	assert.False(t, d.Allowed)
	assert.Equal(t, rbac.ReasonInsufficientCapability, d.Reason)
	assert.Equal(t, rbac.CapCreateProjects, d.Capability)
}

func TestCheckCapabilityPerformsNoLookup(t *testing.T) {
	resolver := NewMockResolver()
	engine := rbac.NewEngine(resolver)

	engine.CheckCapability(&rbac.Principal{ID: "u1", Role: rbac.GlobalAdmin}, rbac.CapManageUsers)
	engine.CheckCapability(&rbac.Principal{ID: "u2", Role: rbac.GlobalViewer}, rbac.CapManageUsers)

	assert.Zero(t, resolver.lookups)
}

func TestCheckProjectRoleNotAMember(t *testing.T) {
	resolver := NewMockResolver()
	resolver.projects["p1"] = true
	engine := rbac.NewEngine(resolver)

	// Global manager without a membership is still denied.
	manager := &rbac.Principal{ID: "u1", Role: rbac.GlobalManager}
	d := engine.CheckProjectRole(context.Background(), manager, "p1", rbac.ProjectManager)
	assert.False(t, d.Allowed)
	assert.Equal(t, rbac.ReasonNotAMember, d.Reason)
}

func TestCheckProjectRoleAdminBypass(t *testing.T) {
	resolver := NewMockResolver()
	engine := rbac.NewEngine(resolver)

	// Admin is allowed without any membership and without any lookup, even
	// for the highest requirement on a project the resolver knows nothing
	// about.
	admin := &rbac.Principal{ID: "u1", Role: rbac.GlobalAdmin}
	d := engine.CheckProjectRole(context.Background(), admin, "p1", rbac.ProjectOwner)
	assert.True(t, d.Allowed)
	assert.Zero(t, resolver.lookups)
}

func TestCheckProjectRoleHierarchy(t *testing.T) {
	resolver := NewMockResolver()
	resolver.projects["p1"] = true
	resolver.memberships["u1/p1"] = rbac.ProjectCollaborator
	engine := rbac.NewEngine(resolver)

	contributor := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	d := engine.CheckProjectRole(context.Background(), contributor, "p1", rbac.ProjectManager)
	assert.False(t, d.Allowed)
	assert.Equal(t, rbac.ReasonInsufficientProjectRole, d.Reason)
	assert.Equal(t, rbac.ProjectManager, d.RequiredRole)

	d = engine.CheckProjectRole(context.Background(), contributor, "p1", rbac.ProjectCollaborator)
	assert.True(t, d.Allowed)
}

func TestCheckProjectRoleProjectNotFound(t *testing.T) {
	engine := rbac.NewEngine(NewMockResolver())

	p := &rbac.Principal{ID: "u1", Role: rbac.GlobalManager}
	d := engine.CheckProjectRole(context.Background(), p, "missing", rbac.ProjectViewer)
	assert.False(t, d.Allowed)
	assert.Equal(t, rbac.ReasonResourceNotFound, d.Reason)
}

func TestCheckProjectRoleUnauthenticated(t *testing.T) {
	engine := rbac.NewEngine(NewMockResolver())

	d := engine.CheckProjectRole(context.Background(), nil, "p1", rbac.ProjectViewer)
	assert.Equal(t, rbac.ReasonUnauthenticated, d.Reason)
}

func TestCheckProjectRoleResolverFailure(t *testing.T) {
	resolver := NewMockResolver()
	resolver.projects["p1"] = true
	resolver.err = errors.New("connection refused")
	engine := rbac.NewEngine(resolver)

	// A failed lookup is fail-closed and distinct from NotAMember.
	p := &rbac.Principal{ID: "u1", Role: rbac.GlobalManager}
	d := engine.CheckProjectRole(context.Background(), p, "p1", rbac.ProjectViewer)
	assert.False(t, d.Allowed)
	assert.Equal(t, rbac.ReasonResolverUnavailable, d.Reason)
}

func TestCheckTaskAccessAssignedFallback(t *testing.T) {
	resolver := NewMockResolver()
	resolver.projects["p1"] = true
	resolver.tasks["t1"] = "p1"
	resolver.memberships["u1/p1"] = rbac.ProjectViewer
	resolver.taskMemberships["u1/t1"] = rbac.TaskAssigned
	engine := rbac.NewEngine(resolver)

	// Project viewer fails the collaborator alternative but is assigned to
	// the task, which satisfies the assigned alternative.
	viewer := &rbac.Principal{ID: "u1", Role: rbac.GlobalViewer}
	d := engine.CheckTaskAccess(context.Background(), viewer, "t1",
		rbac.AccessAssigned, rbac.AccessProjectCollaborator)
	assert.True(t, d.Allowed)
}

func TestCheckTaskAccessReviewerCountsAsAssigned(t *testing.T) {
	resolver := NewMockResolver()
	resolver.tasks["t1"] = "p1"
	resolver.taskMemberships["u1/t1"] = rbac.TaskReviewer
	engine := rbac.NewEngine(resolver)

	// Task roles have no hierarchy: reviewer presence satisfies the
	// assigned level exactly like assigned does.
	p := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}
	d := engine.CheckTaskAccess(context.Background(), p, "t1", rbac.AccessAssigned)
	assert.True(t, d.Allowed)
}

func TestCheckTaskAccessLevels(t *testing.T) {
	resolver := NewMockResolver()
	resolver.tasks["t1"] = "p1"
	resolver.memberships["member/p1"] = rbac.ProjectViewer
	resolver.memberships["collab/p1"] = rbac.ProjectCollaborator
	resolver.memberships["manager/p1"] = rbac.ProjectManager
	engine := rbac.NewEngine(resolver)

	tests := []struct {
		name   string
		userID string
		levels []rbac.TaskAccessLevel
		want   bool
	}{
		{"viewer fails collaborator level", "member", []rbac.TaskAccessLevel{rbac.AccessProjectCollaborator}, false},
		{"viewer passes member level", "member", []rbac.TaskAccessLevel{rbac.AccessProjectMember}, true},
		{"collaborator passes collaborator level", "collab", []rbac.TaskAccessLevel{rbac.AccessProjectCollaborator}, true},
		{"collaborator fails manager level", "collab", []rbac.TaskAccessLevel{rbac.AccessProjectManager}, false},
		{"manager passes manager level", "manager", []rbac.TaskAccessLevel{rbac.AccessProjectManager}, true},
		{"non-member fails everything", "stranger", []rbac.TaskAccessLevel{
			rbac.AccessAssigned, rbac.AccessProjectMember, rbac.AccessProjectCollaborator, rbac.AccessProjectManager,
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &rbac.Principal{ID: tt.userID, Role: rbac.GlobalContributor}
			d := engine.CheckTaskAccess(context.Background(), p, "t1", tt.levels...)
			assert.Equal(t, tt.want, d.Allowed)
			if !tt.want {
				assert.Equal(t, rbac.ReasonNoTaskAccess, d.Reason)
			}
		})
	}
}

func TestCheckTaskAccessTaskNotFound(t *testing.T) {
	engine := rbac.NewEngine(NewMockResolver())

	p := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}
	d := engine.CheckTaskAccess(context.Background(), p, "missing", rbac.AccessAssigned)
	assert.Equal(t, rbac.ReasonResourceNotFound, d.Reason)
}

func TestCheckTaskAccessAdminBypass(t *testing.T) {
	resolver := NewMockResolver()
	engine := rbac.NewEngine(resolver)

	admin := &rbac.Principal{ID: "u1", Role: rbac.GlobalAdmin}
	d := engine.CheckTaskAccess(context.Background(), admin, "t1", rbac.AccessProjectManager)
	assert.True(t, d.Allowed)
	assert.Zero(t, resolver.lookups)
}

func TestCheckTaskAccessResolverFailure(t *testing.T) {
	resolver := NewMockResolver()
	resolver.tasks["t1"] = "p1"
	resolver.err = errors.New("timeout")
	engine := rbac.NewEngine(resolver)

	p := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}
	d := engine.CheckTaskAccess(context.Background(), p, "t1", rbac.AccessAssigned)
	assert.Equal(t, rbac.ReasonResolverUnavailable, d.Reason)
}

func TestCheckUserUpdate(t *testing.T) {
	engine := rbac.NewEngine(NewMockResolver())

	contributor := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	// Own name change is fine.
	d := engine.CheckUserUpdate(contributor, rbac.UserUpdate{TargetUserID: "u1"})
	assert.True(t, d.Allowed)

	// Own role change is not.
	d = engine.CheckUserUpdate(contributor, rbac.UserUpdate{TargetUserID: "u1", ChangesRole: true})
	assert.Equal(t, rbac.ReasonForbiddenSelfRoleChange, d.Reason)

	// Neither is own manager change.
	d = engine.CheckUserUpdate(contributor, rbac.UserUpdate{TargetUserID: "u1", ChangesManager: true})
	assert.Equal(t, rbac.ReasonForbiddenSelfManagerChange, d.Reason)

	// Someone else's profile is off limits entirely.
	d = engine.CheckUserUpdate(contributor, rbac.UserUpdate{TargetUserID: "u2"})
	assert.Equal(t, rbac.ReasonForbiddenNotSelf, d.Reason)

	// Admin may do all of the above.
	admin := &rbac.Principal{ID: "a1", Role: rbac.GlobalAdmin}
	d = engine.CheckUserUpdate(admin, rbac.UserUpdate{TargetUserID: "u2", ChangesRole: true, ChangesManager: true})
	assert.True(t, d.Allowed)

	d = engine.CheckUserUpdate(nil, rbac.UserUpdate{TargetUserID: "u1"})
	assert.Equal(t, rbac.ReasonUnauthenticated, d.Reason)
}

func TestDecisionsAreIdempotent(t *testing.T) {
	resolver := NewMockResolver()
	resolver.projects["p1"] = true
	resolver.memberships["u1/p1"] = rbac.ProjectCollaborator
	engine := rbac.NewEngine(resolver)

	p := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	first := engine.CheckProjectRole(context.Background(), p, "p1", rbac.ProjectManager)
	second := engine.CheckProjectRole(context.Background(), p, "p1", rbac.ProjectManager)
	require.Equal(t, first, second)
}
