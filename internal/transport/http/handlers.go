package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openboard/openboard/internal/activity"
	"github.com/openboard/openboard/internal/audit"
	"github.com/openboard/openboard/internal/auth"
	"github.com/openboard/openboard/internal/identity"
	"github.com/openboard/openboard/internal/observability/logger"
	"github.com/openboard/openboard/internal/project"
	"github.com/openboard/openboard/internal/rbac"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	users       *identity.Service
	projects    *project.Service
	feed        *activity.Service
	engine      *rbac.Engine
	tokens      *auth.TokenService
	auditLogger audit.Logger
	access      *logger.AuditLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *identity.Service,
	projects *project.Service,
	feed *activity.Service,
	engine *rbac.Engine,
	tokens *auth.TokenService,
	auditLogger audit.Logger,
	access *logger.AuditLogger,
) *Handler {
	return &Handler{
		users:       users,
		projects:    projects,
		feed:        feed,
		engine:      engine,
		tokens:      tokens,
		auditLogger: auditLogger,
		access:      access,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.With(h.RequireAuth).Get("/auth/me", h.GetCurrentUser)

			// Users
			r.Route("/users", func(r chi.Router) {
				r.With(h.RequireGlobalRole(rbac.GlobalManager)).Get("/", h.ListUsers)
				r.With(h.RequireCapability(rbac.CapManageUsers)).Post("/", h.CreateUser)
				r.Route("/{userID}", func(r chi.Router) {
					r.With(h.RequireAuth).Get("/", h.GetUser)
					r.Patch("/", h.UpdateUser)
					r.With(h.RequireCapability(rbac.CapManageUsers)).Delete("/", h.DeleteUser)
				})
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.With(h.RequireCapability(rbac.CapViewProjects)).Get("/", h.ListProjects)
				r.With(h.RequireCapability(rbac.CapCreateProjects)).Post("/", h.CreateProject)
				r.Route("/{projectID}", func(r chi.Router) {
					r.With(h.RequireCapability(rbac.CapViewProjects)).Get("/", h.GetProject)
					r.With(h.RequireProjectRole(rbac.ProjectManager)).Patch("/", h.UpdateProject)
					r.With(
						h.RequireCapability(rbac.CapDeleteProjects),
						h.RequireProjectRole(rbac.ProjectOwner),
					).Delete("/", h.DeleteProject)

					r.Route("/members", func(r chi.Router) {
						r.With(h.RequireCapability(rbac.CapViewProjects)).Get("/", h.ListMembers)
						r.Group(func(r chi.Router) {
							r.Use(h.RequireProjectRole(rbac.ProjectManager))
							r.Post("/", h.AssignMember)
							r.Patch("/{userID}", h.UpdateMemberRole)
							r.Delete("/{userID}", h.RemoveMember)
						})
					})
				})
			})

			// Tasks
			r.Route("/tasks", func(r chi.Router) {
				r.With(h.RequireCapability(rbac.CapViewTasks)).Get("/", h.ListTasks)
				r.With(h.RequireCapability(rbac.CapCreateTasks)).Post("/", h.CreateTask)
				r.Route("/{taskID}", func(r chi.Router) {
					r.With(h.RequireCapability(rbac.CapViewTasks)).Get("/", h.GetTask)
					r.With(h.RequireTaskAccess(
						rbac.AccessProjectCollaborator, rbac.AccessAssigned,
					)).Patch("/", h.UpdateTask)
					r.With(
						h.RequireCapability(rbac.CapUpdateTaskStatus),
						h.RequireTaskAccess(rbac.AccessProjectCollaborator, rbac.AccessAssigned),
					).Post("/status", h.UpdateTaskStatus)
					r.With(h.RequireTaskAccess(rbac.AccessProjectManager)).Delete("/", h.DeleteTask)

					r.Route("/members", func(r chi.Router) {
						r.With(h.RequireAuth).Get("/", h.ListTaskMembers)
						r.Group(func(r chi.Router) {
							r.Use(h.RequireTaskAccess(rbac.AccessProjectCollaborator, rbac.AccessAssigned))
							r.Post("/", h.AssignTaskMember)
							r.Patch("/{userID}", h.UpdateTaskMemberRole)
							r.Delete("/{userID}", h.RemoveTaskMember)
						})
					})
				})
			})

			// Work items attached to tasks
			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)

				r.Route("/milestones", func(r chi.Router) {
					r.Get("/", h.ListMilestones)
					r.Post("/", h.CreateMilestone)
					r.Get("/{milestoneID}", h.GetMilestone)
					r.Patch("/{milestoneID}", h.UpdateMilestone)
					r.Delete("/{milestoneID}", h.DeleteMilestone)
				})

				r.Route("/incidences", func(r chi.Router) {
					r.Get("/", h.ListIncidences)
					r.Post("/", h.CreateIncidence)
					r.Get("/{incidenceID}", h.GetIncidence)
					r.Patch("/{incidenceID}", h.UpdateIncidence)
					r.Delete("/{incidenceID}", h.DeleteIncidence)
				})

				r.Route("/comments", func(r chi.Router) {
					r.Get("/", h.ListComments)
					r.Post("/", h.CreateComment)
					r.Get("/{commentID}", h.GetComment)
					r.Patch("/{commentID}", h.UpdateComment)
					r.Delete("/{commentID}", h.DeleteComment)
				})

				r.Route("/activity", func(r chi.Router) {
					r.Get("/", h.ListActivity)
					r.Post("/", h.CreateActivity)
					r.Get("/{activityID}", h.GetActivity)
					r.Delete("/{activityID}", h.DeleteActivity)
				})
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "openboard",
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
