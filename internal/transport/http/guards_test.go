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

package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/openboard/openboard/internal/observability/logger"
	"github.com/openboard/openboard/internal/rbac"
	"github.com/stretchr/testify/assert"
)

// stubResolver implements rbac.MembershipResolver with fixed data
type stubResolver struct {
	memberships map[string]rbac.ProjectRole // "userID/projectID"
	projects    map[string]bool
	tasks       map[string]string // taskID -> projectID
	err         error
}

func (s *stubResolver) ResolveMembership(ctx context.Context, userID, projectID string) (*rbac.Membership, error) {
	if s.err != nil {
		return nil, s.err
	}
	if role, ok := s.memberships[userID+"/"+projectID]; ok {
		return &rbac.Membership{UserID: userID, ProjectID: projectID, Role: role}, nil
	}
	return nil, nil
}

func (s *stubResolver) ResolveTaskMembership(ctx context.Context, userID, taskID string) (*rbac.TaskMembership, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

func (s *stubResolver) ResolveProject(ctx context.Context, projectID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.projects[projectID], nil
}

func (s *stubResolver) ResolveTask(ctx context.Context, taskID string) (rbac.TaskRef, error) {
	if s.err != nil {
		return rbac.TaskRef{}, s.err
	}
	if pid, ok := s.tasks[taskID]; ok {
		return rbac.TaskRef{Exists: true, ProjectID: pid}, nil
	}
	return rbac.TaskRef{}, nil
}

func newGuardHandler(resolver rbac.MembershipResolver) *Handler {
	return &Handler{
		engine: rbac.NewEngine(resolver),
		access: logger.NewAuditLogger(slog.Default()),
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func doGuarded(t *testing.T, h *Handler, guard func(http.Handler) http.Handler, path, target string, p *rbac.Principal) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.With(guard).Get(path, okHandler)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if p != nil {
		req = req.WithContext(WithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireCapabilityUnauthenticated(t *testing.T) {
	h := newGuardHandler(&stubResolver{})

	rec := doGuarded(t, h, h.RequireCapability(rbac.CapCreateProjects), "/projects", "/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), string(rbac.ReasonUnauthenticated))
}

func TestRequireCapabilityDenied(t *testing.T) {
	h := newGuardHandler(&stubResolver{})
	viewer := &rbac.Principal{ID: "u1", Role: rbac.GlobalViewer}

	rec := doGuarded(t, h, h.RequireCapability(rbac.CapCreateProjects), "/projects", "/projects", viewer)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), string(rbac.ReasonInsufficientCapability))
}

func TestRequireCapabilityAllowed(t *testing.T) {
	h := newGuardHandler(&stubResolver{})
	manager := &rbac.Principal{ID: "u1", Role: rbac.GlobalManager}

	rec := doGuarded(t, h, h.RequireCapability(rbac.CapCreateProjects), "/projects", "/projects", manager)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireProjectRoleMissingProject(t *testing.T) {
	h := newGuardHandler(&stubResolver{projects: map[string]bool{}})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireProjectRole(rbac.ProjectManager),
		"/projects/{projectID}", "/projects/ghost", user)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireProjectRoleNotAMember(t *testing.T) {
	h := newGuardHandler(&stubResolver{projects: map[string]bool{"p1": true}})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireProjectRole(rbac.ProjectViewer),
		"/projects/{projectID}", "/projects/p1", user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), string(rbac.ReasonNotAMember))
}

func TestRequireProjectRoleInsufficient(t *testing.T) {
	h := newGuardHandler(&stubResolver{
		projects:    map[string]bool{"p1": true},
		memberships: map[string]rbac.ProjectRole{"u1/p1": rbac.ProjectCollaborator},
	})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireProjectRole(rbac.ProjectManager),
		"/projects/{projectID}", "/projects/p1", user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), string(rbac.ReasonInsufficientProjectRole))
}

func TestRequireProjectRoleAdminBypass(t *testing.T) {
	h := newGuardHandler(&stubResolver{err: errors.New("db down")})
	admin := &rbac.Principal{ID: "root", Role: rbac.GlobalAdmin}

	// Admin is allowed even when the resolver would fail.
	rec := doGuarded(t, h, h.RequireProjectRole(rbac.ProjectOwner),
		"/projects/{projectID}", "/projects/p1", admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireProjectRoleResolverUnavailable(t *testing.T) {
	h := newGuardHandler(&stubResolver{err: errors.New("db down")})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireProjectRole(rbac.ProjectViewer),
		"/projects/{projectID}", "/projects/p1", user)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireTaskAccessMissingTask(t *testing.T) {
	h := newGuardHandler(&stubResolver{tasks: map[string]string{}})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireTaskAccess(rbac.AccessAssigned),
		"/tasks/{taskID}", "/tasks/ghost", user)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireTaskAccessDenied(t *testing.T) {
	h := newGuardHandler(&stubResolver{
		tasks:    map[string]string{"t1": "p1"},
		projects: map[string]bool{"p1": true},
	})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireTaskAccess(rbac.AccessProjectCollaborator, rbac.AccessAssigned),
		"/tasks/{taskID}", "/tasks/t1", user)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), string(rbac.ReasonNoTaskAccess))
}

func TestRequireTaskAccessViaProjectRole(t *testing.T) {
	h := newGuardHandler(&stubResolver{
		tasks:       map[string]string{"t1": "p1"},
		projects:    map[string]bool{"p1": true},
		memberships: map[string]rbac.ProjectRole{"u1/p1": rbac.ProjectCollaborator},
	})
	user := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}

	rec := doGuarded(t, h, h.RequireTaskAccess(rbac.AccessProjectCollaborator, rbac.AccessAssigned),
		"/tasks/{taskID}", "/tasks/t1", user)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGlobalRole(t *testing.T) {
	h := newGuardHandler(&stubResolver{})

	contributor := &rbac.Principal{ID: "u1", Role: rbac.GlobalContributor}
	rec := doGuarded(t, h, h.RequireGlobalRole(rbac.GlobalManager), "/users", "/users", contributor)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	manager := &rbac.Principal{ID: "u2", Role: rbac.GlobalManager}
	rec = doGuarded(t, h, h.RequireGlobalRole(rbac.GlobalManager), "/users", "/users", manager)
	assert.Equal(t, http.StatusOK, rec.Code)
}
