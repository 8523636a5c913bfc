package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/taskcore/task-management/internal/activity"
	"github.com/taskcore/task-management/internal/auth"
	"github.com/taskcore/task-management/internal/department"
	"github.com/taskcore/task-management/internal/notification"
	"github.com/taskcore/task-management/internal/permission"
	"github.com/taskcore/task-management/internal/role"
	"github.com/taskcore/task-management/internal/task"
	"github.com/taskcore/task-management/internal/transport/middleware"
	"github.com/taskcore/task-management/internal/transport/swagger"
	"github.com/taskcore/task-management/internal/user"
	"github.com/taskcore/task-management/internal/workflow"
)

// Handlers bundles every route handler the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Gate         *auth.Gate
	Permission   *permission.Handler
	Role         *role.Handler
	User         *user.Handler
	Workflow     *workflow.Handler
	Task         *task.Handler
	Department   *department.Handler
	Notification *notification.Handler
	Activity     *activity.Handler
}

// RegisterAllRoutes mounts the API under /api/v1. Everything except login,
// refresh and health requires a valid token; admin surfaces are additionally
// gated on catalog permissions.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			pr.Group(func(ur chi.Router) {
				ur.Use(h.Gate.RequirePermission("users:view"))
				ur.Get("/users", h.User.ListUsers)
				ur.Get("/users/{userID}", h.User.GetUser)
			})
			pr.Group(func(ur chi.Router) {
				ur.Use(h.Gate.RequirePermission("users:create"))
				ur.Post("/users", h.User.CreateUser)
			})
			pr.Group(func(ur chi.Router) {
				ur.Use(h.Gate.RequirePermission("users:update"))
				ur.Put("/users/{userID}/roles", h.User.AssignRoles)
			})

			pr.Group(func(rr chi.Router) {
				rr.Use(h.Gate.RequirePermission("roles:view"))
				rr.Get("/permissions", h.Permission.ListPermissions)
				rr.Get("/roles", h.Role.ListRoles)
				rr.Get("/roles/{roleID}", h.Role.GetRole)
			})
			pr.Group(func(rr chi.Router) {
				rr.Use(h.Gate.RequirePermission("roles:create"))
				rr.Post("/roles", h.Role.CreateRole)
			})
			pr.Group(func(rr chi.Router) {
				rr.Use(h.Gate.RequirePermission("roles:update"))
				rr.Put("/roles/{roleID}", h.Role.UpdateRole)
			})
			pr.Group(func(rr chi.Router) {
				rr.Use(h.Gate.RequirePermission("roles:delete"))
				rr.Delete("/roles/{roleID}", h.Role.DeleteRole)
			})
			pr.Group(func(rr chi.Router) {
				rr.Use(h.Gate.RequirePermission("roles:clone"))
				rr.Post("/roles/{roleID}/clone", h.Role.CloneRole)
			})

			// The status graph is readable by anyone who can see tasks;
			// changing it is a workflow admin operation.
			pr.Get("/workflow/statuses", h.Workflow.ListStatuses)
			pr.Get("/workflow/transitions", h.Workflow.ListTransitions)
			pr.Group(func(wr chi.Router) {
				wr.Use(h.Gate.RequirePermission("workflow:configure"))
				wr.Post("/workflow/statuses", h.Workflow.CreateStatus)
				wr.Put("/workflow/statuses/{statusID}", h.Workflow.UpdateStatus)
				wr.Delete("/workflow/statuses/{statusID}", h.Workflow.DeleteStatus)
				wr.Post("/workflow/transitions", h.Workflow.CreateTransition)
				wr.Put("/workflow/transitions/{transitionID}", h.Workflow.UpdateTransition)
				wr.Delete("/workflow/transitions/{transitionID}", h.Workflow.DeleteTransition)
			})

			pr.Route("/tasks", func(tr chi.Router) {
				tr.Group(func(vr chi.Router) {
					vr.Use(h.Gate.RequireAnyPermission("tasks:view", "tasks:view_all"))
					vr.Get("/", h.Task.ListTasks)
					vr.Get("/{taskID}", h.Task.GetTask)
					vr.Get("/{taskID}/comments", h.Task.ListComments)
					vr.Get("/{taskID}/activity", h.Activity.ListForTask)
					vr.Post("/{taskID}/comments", h.Task.AddComment)
				})
				tr.Group(func(cr chi.Router) {
					cr.Use(h.Gate.RequirePermission("tasks:create"))
					cr.Post("/", h.Task.CreateTask)
				})
				tr.Group(func(ur chi.Router) {
					ur.Use(h.Gate.RequirePermission("tasks:update"))
					ur.Put("/{taskID}", h.Task.UpdateTask)
					ur.Patch("/{taskID}/status", h.Workflow.TransitionTask)
				})
				tr.Group(func(dr chi.Router) {
					dr.Use(h.Gate.RequirePermission("tasks:delete"))
					dr.Delete("/{taskID}", h.Task.DeleteTask)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Group(func(vr chi.Router) {
					vr.Use(h.Gate.RequirePermission("departments:view"))
					vr.Get("/", h.Department.ListDepartments)
					vr.Get("/{departmentID}", h.Department.GetDepartment)
				})
				dr.Group(func(cr chi.Router) {
					cr.Use(h.Gate.RequirePermission("departments:create"))
					cr.Post("/", h.Department.CreateDepartment)
				})
				dr.Group(func(ur chi.Router) {
					ur.Use(h.Gate.RequirePermission("departments:update"))
					ur.Put("/{departmentID}", h.Department.UpdateDepartment)
				})
				dr.Group(func(xr chi.Router) {
					xr.Use(h.Gate.RequirePermission("departments:delete"))
					xr.Delete("/{departmentID}", h.Department.DeleteDepartment)
				})
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListMine)
				nr.Get("/unread-count", h.Notification.UnreadCount)
				nr.Patch("/{notificationID}/read", h.Notification.MarkRead)
				nr.Patch("/read-all", h.Notification.MarkAllRead)

				nr.Group(func(mr chi.Router) {
					mr.Use(h.Gate.RequirePermission("notifications:manage_rules"))
					mr.Get("/rules", h.Notification.ListRules)
					mr.Post("/rules", h.Notification.CreateRule)
					mr.Put("/rules/{ruleID}", h.Notification.UpdateRule)
					mr.Delete("/rules/{ruleID}", h.Notification.DeleteRule)
				})
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(h.Gate.RequirePermission("activity_logs:view"))
				ar.Get("/activity-logs", h.Activity.ListRecent)
			})
		})
	})
}
