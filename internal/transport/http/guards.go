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
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openboard/openboard/internal/observability/logger"
	"github.com/openboard/openboard/internal/rbac"
)

// respondDecision writes the HTTP mapping of a deny verdict and reports
// whether the request may proceed.
func (h *Handler) respondDecision(w http.ResponseWriter, r *http.Request, d rbac.Decision) bool {
	if d.Allowed {
		return true
	}

	userID := ""
	if p := GetPrincipal(r.Context()); p != nil {
		userID = p.ID
	}
	h.access.AccessDenied(r.Context(), userID, r.URL.Path, string(d.Reason), getIPAddress(r))
	slog.InfoContext(r.Context(), "access denied",
		logger.UserID(userID),
		logger.Path(r.URL.Path),
		logger.DenyReason(string(d.Reason)),
	)

	switch d.Reason {
	case rbac.ReasonUnauthenticated:
		respondError(w, http.StatusUnauthorized, string(d.Reason))
	case rbac.ReasonResourceNotFound:
		respondError(w, http.StatusNotFound, string(d.Reason))
	case rbac.ReasonResolverUnavailable:
		respondError(w, http.StatusServiceUnavailable, string(d.Reason))
	default:
		respondError(w, http.StatusForbidden, string(d.Reason))
	}
	return false
}

// RequireAuth rejects unauthenticated requests.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r.Context()) == nil {
			respondError(w, http.StatusUnauthorized, string(rbac.ReasonUnauthenticated))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability guards a route with a global capability check.
func (h *Handler) RequireCapability(capability rbac.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := h.engine.CheckCapability(GetPrincipal(r.Context()), capability)
			if !h.respondDecision(w, r, d) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGlobalRole guards a route on the global role hierarchy.
func (h *Handler) RequireGlobalRole(required rbac.GlobalRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				h.respondDecision(w, r, rbac.Deny(rbac.ReasonUnauthenticated))
				return
			}
			if !rbac.HasRoleOrHigher(p.Role, required) {
				h.respondDecision(w, r, rbac.Deny(rbac.ReasonInsufficientCapability))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireProjectRole guards a route on the project role hierarchy, reading
// the project from the projectID URL parameter.
func (h *Handler) RequireProjectRole(required rbac.ProjectRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			projectID := chi.URLParam(r, "projectID")
			d := h.engine.CheckProjectRole(r.Context(), GetPrincipal(r.Context()), projectID, required)
			if !h.respondDecision(w, r, d) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTaskAccess guards a route on task access alternatives, reading the
// task from the taskID URL parameter. Any satisfied alternative grants
// access.
func (h *Handler) RequireTaskAccess(levels ...rbac.TaskAccessLevel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			taskID := chi.URLParam(r, "taskID")
			d := h.engine.CheckTaskAccess(r.Context(), GetPrincipal(r.Context()), taskID, levels...)
			if !h.respondDecision(w, r, d) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
