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

	"github.com/go-chi/chi/v5"
	"github.com/openboard/openboard/internal/identity"
	"github.com/openboard/openboard/internal/observability/logger"
	"github.com/openboard/openboard/internal/rbac"
)

// UserResponse is the wire shape of a user
type UserResponse struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	Surname           string  `json:"surname"`
	Role              string  `json:"role"`
	ProfilePictureURL string  `json:"profile_picture_url,omitempty"`
	ManagerID         *string `json:"manager_id,omitempty"`
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Surname:           u.Surname,
		Role:              string(u.Role),
		ProfilePictureURL: u.ProfilePictureURL,
		ManagerID:         u.ManagerID,
	}
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and issues a token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.access.LoginFailure(r.Context(), req.Email, getIPAddress(r), err.Error())
		switch {
		case errors.Is(err, identity.ErrAccountLocked):
			respondError(w, http.StatusForbidden, "account temporarily locked")
		default:
			respondError(w, http.StatusUnauthorized, "invalid credentials")
		}
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.access.LoginSuccess(r.Context(), user.ID, getIPAddress(r))

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserResponse(user),
	})
}

// GetCurrentUser returns the authenticated user
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	p := GetPrincipal(r.Context())

	user, err := h.users.GetUser(r.Context(), p.ID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// ListUsers returns all users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list users", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateUserRequest represents user creation data
type CreateUserRequest struct {
	Email             string  `json:"email"`
	Password          string  `json:"password"`
	Name              string  `json:"name"`
	Surname           string  `json:"surname"`
	Role              string  `json:"role"`
	ProfilePictureURL string  `json:"profile_picture_url"`
	ManagerID         *string `json:"manager_id"`
}

// CreateUser provisions a new user
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := rbac.GlobalRole(req.Role)
	if req.Role != "" {
		parsed, err := rbac.ParseGlobalRole(req.Role)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unknown role")
			return
		}
		role = parsed
	}

	user, err := h.users.CreateUser(r.Context(), identity.CreateUserInput{
		Email:             req.Email,
		Password:          req.Password,
		Name:              req.Name,
		Surname:           req.Surname,
		Role:              role,
		ProfilePictureURL: req.ProfilePictureURL,
		ManagerID:         req.ManagerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, "user already exists")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		default:
			slog.ErrorContext(r.Context(), "failed to create user", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	actorID := ""
	if p := GetPrincipal(r.Context()); p != nil {
		actorID = p.ID
	}
	h.access.AccountCreated(r.Context(), user.ID, actorID, getIPAddress(r))

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

// GetUser retrieves a user by ID
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUserRequest represents a partial user update. Setting clear_manager
// removes the manager assignment.
type UpdateUserRequest struct {
	Email             *string `json:"email"`
	Name              *string `json:"name"`
	Surname           *string `json:"surname"`
	Role              *string `json:"role"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	ManagerID         *string `json:"manager_id"`
	ClearManager      bool    `json:"clear_manager"`
	Password          *string `json:"password"`
}

// UpdateUser applies a partial update. Admins may update anyone; other users
// may only update themselves and may not change their own role or manager.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := identity.UpdateUserInput{
		Email:             req.Email,
		Name:              req.Name,
		Surname:           req.Surname,
		ProfilePictureURL: req.ProfilePictureURL,
		ManagerID:         req.ManagerID,
		ClearManager:      req.ClearManager,
		Password:          req.Password,
	}
	if req.Role != nil {
		parsed, err := rbac.ParseGlobalRole(*req.Role)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unknown role")
			return
		}
		input.Role = &parsed
	}

	d := h.engine.CheckUserUpdate(GetPrincipal(r.Context()), rbac.UserUpdate{
		TargetUserID:   userID,
		ChangesRole:    input.ChangesRole(),
		ChangesManager: input.ChangesManager(),
	})
	if !h.respondDecision(w, r, d) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		default:
			slog.ErrorContext(r.Context(), "failed to update user", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	if input.ChangesRole() {
		actorID := GetPrincipal(r.Context()).ID
		h.access.RoleChanged(r.Context(), user.ID, actorID, string(user.Role), getIPAddress(r))
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser removes a user
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.access.AccountDeleted(r.Context(), userID, GetPrincipal(r.Context()).ID, getIPAddress(r))

	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
