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
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openboard/openboard/internal/project"
	"github.com/openboard/openboard/internal/rbac"
)

// TaskResponse is the wire shape of a task
type TaskResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTaskResponse(t *project.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func respondTaskError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if errors.Is(err, project.ErrTaskNotFound) {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}
	respondProjectError(w, r, err, action)
}

// ListTasks returns tasks, optionally filtered by the project_id query
// parameter.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.projects.ListTasks(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		respondTaskError(w, r, err, "list tasks")
		return
	}

	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateTaskRequest represents task creation data
type CreateTaskRequest struct {
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateTask creates a task. The actor must hold at least the collaborator
// role on the target project; the check runs in the handler because the
// project comes from the request body, not the URL.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.ProjectID == "" {
		respondError(w, http.StatusBadRequest, "title and project_id are required")
		return
	}
	if req.Priority == "" {
		req.Priority = project.PriorityMedium
	}

	d := h.engine.CheckProjectRole(r.Context(), GetPrincipal(r.Context()), req.ProjectID, rbac.ProjectCollaborator)
	if !h.respondDecision(w, r, d) {
		return
	}

	t, err := h.projects.CreateTask(r.Context(), project.CreateTaskInput{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondTaskError(w, r, err, "create task")
		return
	}

	respondJSON(w, http.StatusCreated, toTaskResponse(t))
}

// GetTask retrieves a task
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.projects.GetTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		respondTaskError(w, r, err, "get task")
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

// UpdateTaskRequest represents a partial task update
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateTask applies a partial update
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.projects.UpdateTask(r.Context(), chi.URLParam(r, "taskID"), project.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondTaskError(w, r, err, "update task")
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

// UpdateTaskStatusRequest represents a status transition
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// UpdateTaskStatus transitions a task's status
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "status is required")
		return
	}

	t, err := h.projects.UpdateTask(r.Context(), chi.URLParam(r, "taskID"), project.UpdateTaskInput{
		Status: &req.Status,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondTaskError(w, r, err, "update task status")
		return
	}

	respondJSON(w, http.StatusOK, toTaskResponse(t))
}

// DeleteTask removes a task
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	err := h.projects.DeleteTask(r.Context(), chi.URLParam(r, "taskID"), GetPrincipal(r.Context()).ID)
	if err != nil {
		respondTaskError(w, r, err, "delete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

// TaskMemberResponse is the wire shape of a task membership
type TaskMemberResponse struct {
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toTaskMemberResponse(m *project.TaskMember) TaskMemberResponse {
	return TaskMemberResponse{
		UserID:    m.UserID,
		TaskID:    m.TaskID,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

// ListTaskMembers returns a task's memberships
func (h *Handler) ListTaskMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.projects.ListTaskMembers(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		respondTaskError(w, r, err, "list task members")
		return
	}

	out := make([]TaskMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, toTaskMemberResponse(m))
	}
	respondJSON(w, http.StatusOK, out)
}

// AssignTaskMemberRequest represents a task membership assignment
type AssignTaskMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// AssignTaskMember adds a user to the task. An empty role defaults to
// assigned.
func (h *Handler) AssignTaskMember(w http.ResponseWriter, r *http.Request) {
	var req AssignTaskMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := rbac.TaskRole(req.Role)
	if req.Role != "" {
		parsed, err := rbac.ParseTaskRole(req.Role)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unknown task role")
			return
		}
		role = parsed
	}

	m, err := h.projects.AssignTaskMember(r.Context(),
		chi.URLParam(r, "taskID"), req.UserID, role, GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMembershipAlreadyExists) {
			respondError(w, http.StatusConflict, "user is already assigned")
			return
		}
		respondTaskError(w, r, err, "assign task member")
		return
	}

	respondJSON(w, http.StatusCreated, toTaskMemberResponse(m))
}

// UpdateTaskMemberRoleRequest represents a task membership role change
type UpdateTaskMemberRoleRequest struct {
	Role string `json:"role"`
}

// UpdateTaskMemberRole replaces a task member's role
func (h *Handler) UpdateTaskMemberRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskMemberRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := rbac.ParseTaskRole(req.Role)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown task role")
		return
	}

	m, err := h.projects.UpdateTaskMemberRole(r.Context(),
		chi.URLParam(r, "taskID"), chi.URLParam(r, "userID"), role, GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMembershipNotFound) {
			respondError(w, http.StatusNotFound, "membership not found")
			return
		}
		respondTaskError(w, r, err, "update task member role")
		return
	}

	respondJSON(w, http.StatusOK, toTaskMemberResponse(m))
}

// RemoveTaskMember removes a user from the task
func (h *Handler) RemoveTaskMember(w http.ResponseWriter, r *http.Request) {
	err := h.projects.RemoveTaskMember(r.Context(),
		chi.URLParam(r, "taskID"), chi.URLParam(r, "userID"), GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMembershipNotFound) {
			respondError(w, http.StatusNotFound, "membership not found")
			return
		}
		respondTaskError(w, r, err, "remove task member")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "task member removed"})
}
