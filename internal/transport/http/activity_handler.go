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
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/openboard/openboard/internal/activity"
	"github.com/openboard/openboard/internal/observability/logger"
)

// ActivityResponse is the wire shape of an activity entry
type ActivityResponse struct {
	ID          string    `json:"id"`
	AgentID     string    `json:"agent_id"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListActivity returns the activity feed, newest first. Supports agent_id,
// entity_type, entity_id and limit query parameters.
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := activity.Filter{
		AgentID:    q.Get("agent_id"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.feed.List(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list activity", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}

	out := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toActivityResponse(e))
	}
	respondJSON(w, http.StatusOK, out)
}

func toActivityResponse(e *activity.Entry) ActivityResponse {
	return ActivityResponse{
		ID:          e.ID,
		AgentID:     e.AgentID,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// GetActivity returns a single activity entry
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	entry, err := h.feed.Get(r.Context(), chi.URLParam(r, "activityID"))
	if err != nil {
		if errors.Is(err, activity.ErrEntryNotFound) {
			respondError(w, http.StatusNotFound, "activity entry not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get activity entry", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get activity entry")
		return
	}
	respondJSON(w, http.StatusOK, toActivityResponse(entry))
}

// CreateActivityRequest is the request body for recording an entry directly.
// The agent is always the authenticated principal.
type CreateActivityRequest struct {
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// CreateActivity records an activity entry on behalf of the caller
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EntityType == "" || req.EntityID == "" || req.Action == "" {
		respondError(w, http.StatusBadRequest, "entity_type, entity_id and action are required")
		return
	}

	p := GetPrincipal(r.Context())
	entry, err := h.feed.Record(r.Context(), p.ID, req.EntityType, req.EntityID, req.Action, req.Description)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to record activity", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to record activity")
		return
	}
	respondJSON(w, http.StatusCreated, toActivityResponse(entry))
}

// DeleteActivity removes an activity entry
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Delete(r.Context(), chi.URLParam(r, "activityID")); err != nil {
		if errors.Is(err, activity.ErrEntryNotFound) {
			respondError(w, http.StatusNotFound, "activity entry not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete activity entry", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete activity entry")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "activity entry deleted"})
}
