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

// MilestoneResponse is the wire shape of a milestone
type MilestoneResponse struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toMilestoneResponse(m *project.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:          m.ID,
		TaskID:      m.TaskID,
		Title:       m.Title,
		Description: m.Description,
		IsCompleted: m.IsCompleted,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ListMilestones returns all milestones
func (h *Handler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := h.projects.ListMilestones(r.Context())
	if err != nil {
		respondProjectError(w, r, err, "list milestones")
		return
	}

	out := make([]MilestoneResponse, 0, len(milestones))
	for _, m := range milestones {
		out = append(out, toMilestoneResponse(m))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateMilestoneRequest represents milestone creation data
type CreateMilestoneRequest struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
}

// CreateMilestone creates a milestone on a task
func (h *Handler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	var req CreateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.TaskID == "" {
		respondError(w, http.StatusBadRequest, "title and task_id are required")
		return
	}

	m, err := h.projects.CreateMilestone(r.Context(), project.CreateMilestoneInput{
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondTaskError(w, r, err, "create milestone")
		return
	}

	respondJSON(w, http.StatusCreated, toMilestoneResponse(m))
}

// GetMilestone retrieves a milestone
func (h *Handler) GetMilestone(w http.ResponseWriter, r *http.Request) {
	m, err := h.projects.GetMilestone(r.Context(), chi.URLParam(r, "milestoneID"))
	if err != nil {
		if errors.Is(err, project.ErrMilestoneNotFound) {
			respondError(w, http.StatusNotFound, "milestone not found")
			return
		}
		respondProjectError(w, r, err, "get milestone")
		return
	}
	respondJSON(w, http.StatusOK, toMilestoneResponse(m))
}

// UpdateMilestoneRequest represents a partial milestone update
type UpdateMilestoneRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

// UpdateMilestone applies a partial update
func (h *Handler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	var req UpdateMilestoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.projects.UpdateMilestone(r.Context(), chi.URLParam(r, "milestoneID"), project.UpdateMilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrMilestoneNotFound) {
			respondError(w, http.StatusNotFound, "milestone not found")
			return
		}
		respondProjectError(w, r, err, "update milestone")
		return
	}

	respondJSON(w, http.StatusOK, toMilestoneResponse(m))
}

// DeleteMilestone removes a milestone
func (h *Handler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteMilestone(r.Context(), chi.URLParam(r, "milestoneID")); err != nil {
		if errors.Is(err, project.ErrMilestoneNotFound) {
			respondError(w, http.StatusNotFound, "milestone not found")
			return
		}
		respondProjectError(w, r, err, "delete milestone")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "milestone deleted"})
}

// IncidenceResponse is the wire shape of an incidence
type IncidenceResponse struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toIncidenceResponse(i *project.Incidence) IncidenceResponse {
	return IncidenceResponse{
		ID:          i.ID,
		TaskID:      i.TaskID,
		Title:       i.Title,
		Description: i.Description,
		Status:      i.Status,
		Priority:    i.Priority,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// ListIncidences returns all incidences
func (h *Handler) ListIncidences(w http.ResponseWriter, r *http.Request) {
	incidences, err := h.projects.ListIncidences(r.Context())
	if err != nil {
		respondProjectError(w, r, err, "list incidences")
		return
	}

	out := make([]IncidenceResponse, 0, len(incidences))
	for _, i := range incidences {
		out = append(out, toIncidenceResponse(i))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateIncidenceRequest represents incidence creation data
type CreateIncidenceRequest struct {
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// CreateIncidence reports an incidence on a task
func (h *Handler) CreateIncidence(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.TaskID == "" {
		respondError(w, http.StatusBadRequest, "title and task_id are required")
		return
	}

	i, err := h.projects.CreateIncidence(r.Context(), project.CreateIncidenceInput{
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		respondTaskError(w, r, err, "create incidence")
		return
	}

	respondJSON(w, http.StatusCreated, toIncidenceResponse(i))
}

// GetIncidence retrieves an incidence
func (h *Handler) GetIncidence(w http.ResponseWriter, r *http.Request) {
	i, err := h.projects.GetIncidence(r.Context(), chi.URLParam(r, "incidenceID"))
	if err != nil {
		if errors.Is(err, project.ErrIncidenceNotFound) {
			respondError(w, http.StatusNotFound, "incidence not found")
			return
		}
		respondProjectError(w, r, err, "get incidence")
		return
	}
	respondJSON(w, http.StatusOK, toIncidenceResponse(i))
}

// UpdateIncidenceRequest represents a partial incidence update
type UpdateIncidenceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

// UpdateIncidence applies a partial update
func (h *Handler) UpdateIncidence(w http.ResponseWriter, r *http.Request) {
	var req UpdateIncidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	i, err := h.projects.UpdateIncidence(r.Context(), chi.URLParam(r, "incidenceID"), project.UpdateIncidenceInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}, GetPrincipal(r.Context()).ID)
	if err != nil {
		if errors.Is(err, project.ErrIncidenceNotFound) {
			respondError(w, http.StatusNotFound, "incidence not found")
			return
		}
		respondProjectError(w, r, err, "update incidence")
		return
	}

	respondJSON(w, http.StatusOK, toIncidenceResponse(i))
}

// DeleteIncidence removes an incidence
func (h *Handler) DeleteIncidence(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.DeleteIncidence(r.Context(), chi.URLParam(r, "incidenceID")); err != nil {
		if errors.Is(err, project.ErrIncidenceNotFound) {
			respondError(w, http.StatusNotFound, "incidence not found")
			return
		}
		respondProjectError(w, r, err, "delete incidence")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "incidence deleted"})
}

// CommentResponse is the wire shape of a comment
type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCommentResponse(c *project.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		TaskID:    c.TaskID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ListComments returns all comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.projects.ListComments(r.Context())
	if err != nil {
		respondProjectError(w, r, err, "list comments")
		return
	}

	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateCommentRequest represents comment creation data
type CreateCommentRequest struct {
	TaskID  string `json:"task_id"`
	Content string `json:"content"`
}

// CreateComment adds a comment to a task; the author is the authenticated
// principal.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" || req.TaskID == "" {
		respondError(w, http.StatusBadRequest, "content and task_id are required")
		return
	}

	c, err := h.projects.CreateComment(r.Context(), req.TaskID, GetPrincipal(r.Context()).ID, req.Content)
	if err != nil {
		respondTaskError(w, r, err, "create comment")
		return
	}

	respondJSON(w, http.StatusCreated, toCommentResponse(c))
}

// GetComment retrieves a comment
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	c, err := h.projects.GetComment(r.Context(), chi.URLParam(r, "commentID"))
	if err != nil {
		if errors.Is(err, project.ErrCommentNotFound) {
			respondError(w, http.StatusNotFound, "comment not found")
			return
		}
		respondProjectError(w, r, err, "get comment")
		return
	}
	respondJSON(w, http.StatusOK, toCommentResponse(c))
}

// UpdateCommentRequest represents a comment edit
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateComment replaces a comment's content. Only the author or an admin
// may edit.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}

	commentID := chi.URLParam(r, "commentID")
	existing, err := h.projects.GetComment(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, project.ErrCommentNotFound) {
			respondError(w, http.StatusNotFound, "comment not found")
			return
		}
		respondProjectError(w, r, err, "update comment")
		return
	}

	if !h.canTouchComment(w, r, existing) {
		return
	}

	c, err := h.projects.UpdateComment(r.Context(), commentID, req.Content)
	if err != nil {
		respondProjectError(w, r, err, "update comment")
		return
	}

	respondJSON(w, http.StatusOK, toCommentResponse(c))
}

// DeleteComment removes a comment. Only the author or an admin may delete.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	existing, err := h.projects.GetComment(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, project.ErrCommentNotFound) {
			respondError(w, http.StatusNotFound, "comment not found")
			return
		}
		respondProjectError(w, r, err, "delete comment")
		return
	}

	if !h.canTouchComment(w, r, existing) {
		return
	}

	if err := h.projects.DeleteComment(r.Context(), commentID); err != nil {
		respondProjectError(w, r, err, "delete comment")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}

func (h *Handler) canTouchComment(w http.ResponseWriter, r *http.Request, c *project.Comment) bool {
	p := GetPrincipal(r.Context())
	if p.Role == rbac.GlobalAdmin || p.ID == c.AuthorID {
		return true
	}
	h.respondDecision(w, r, rbac.Deny(rbac.ReasonForbiddenNotSelf))
	return false
}
