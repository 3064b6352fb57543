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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openboard/openboard/internal/observability/logger"
	"github.com/openboard/openboard/internal/project"
	"github.com/openboard/openboard/internal/rbac"
)

// ProjectResponse is the wire shape of a project
type ProjectResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Type:        p.Type,
		Status:      p.Status,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func respondProjectError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		respondError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, project.ErrInvalidType),
		errors.Is(err, project.ErrInvalidPriority):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "failed to "+action, logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// ListProjects returns all projects
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListProjects(r.Context())
	if err != nil {
		respondProjectError(w, r, err, "list projects")
		return
	}

	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateProjectRequest represents project creation data
type CreateProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateProject creates a project
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	p, err := h.projects.CreateProject(r.Context(), project.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondProjectError(w, r, err, "create project")
		return
	}

	respondJSON(w, http.StatusCreated, toProjectResponse(p))
}

// GetProject retrieves a project
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.projects.GetProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		respondProjectError(w, r, err, "get project")
		return
	}
	respondJSON(w, http.StatusOK, toProjectResponse(p))
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	Status      *string    `json:"status"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateProject applies a partial update
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.projects.UpdateProject(r.Context(), chi.URLParam(r, "projectID"), project.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondProjectError(w, r, err, "update project")
		return
	}

	respondJSON(w, http.StatusOK, toProjectResponse(p))
}

// DeleteProject removes a project
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	err := h.projects.DeleteProject(r.Context(), chi.URLParam(r, "projectID"), GetPrincipal(r.Context()).ID)
	if err != nil {
		respondProjectError(w, r, err, "delete project")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}

// MemberResponse is the wire shape of a project membership
type MemberResponse struct {
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toMemberResponse(m *project.Member) MemberResponse {
	return MemberResponse{
		UserID:    m.UserID,
		ProjectID: m.ProjectID,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

// ListMembers returns a project's memberships
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.projects.ListMembers(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		respondProjectError(w, r, err, "list members")
		return
	}

	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toMemberResponse(m))
	}
	respondJSON(w, http.StatusOK, out)
}

// AssignMemberRequest represents a membership assignment
type AssignMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AssignMember adds a user to the project
func (h *Handler) AssignMember(w http.ResponseWriter, r *http.Request) {
	var req AssignMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := rbac.ParseProjectRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown project role")
		return
	}

	m, err := h.projects.AssignMember(r.Context(), chi.URLParam(r, "projectID"), req.UserID, role, GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMembershipAlreadyExists) {
			respondError(w, http.StatusConflict, "user is already a member")
			return
		}
		respondProjectError(w, r, err, "assign member")
		return
	}

	respondJSON(w, http.StatusCreated, toMemberResponse(m))
}

// UpdateMemberRoleRequest represents a membership role change
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// UpdateMemberRole replaces a member's project role
func (h *Handler) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := rbac.ParseProjectRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown project role")
		return
	}

	m, err := h.projects.UpdateMemberRole(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"), role, GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMembershipNotFound) {
			respondError(w, http.StatusNotFound, "membership not found")
			return
		}
		respondProjectError(w, r, err, "update member role")
		return
	}

	respondJSON(w, http.StatusOK, toMemberResponse(m))
}

// RemoveMember removes a user from the project
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.projects.RemoveMember(r.Context(),
		chi.URLParam(r, "projectID"), chi.URLParam(r, "userID"), GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMembershipNotFound) {
			respondError(w, http.StatusNotFound, "membership not found")
			return
		}
		respondProjectError(w, r, err, "remove member")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}
