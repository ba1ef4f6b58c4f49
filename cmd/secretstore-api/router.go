package main

import (
	"context"
	"net/http"
	"time"

	"secretstore-api/internal/auth"
	"secretstore-api/internal/config"
	"secretstore-api/internal/http/docs"
	"secretstore-api/internal/http/handler"
	"secretstore-api/internal/http/middleware"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/ratelimit"
	"secretstore-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RouterDeps carries everything buildRouter needs.
type RouterDeps struct {
	Cfg         *config.Config
	Log         *logger.Logger
	Validator   auth.TokenValidator
	RateLimiter *ratelimit.RedisRateLimiter
	Metrics     *telemetry.Metrics
	Pool        *pgxpool.Pool // readiness check

	// Handlers
	WorkspaceHandler     *handler.WorkspaceHandler
	RoleHandler          *handler.RoleHandler
	RoleBindingHandler   *handler.RoleBindingHandler
	WorkspaceUserHandler *handler.WorkspaceUserHandler
	SecretHandler        *handler.SecretHandler
	LogHandler           *handler.LogHandler
	EventBindingHandler  *handler.EventBindingHandler
	ChatBindingHandler   *handler.ChatBindingHandler
}

func buildRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(deps.Log))
	r.Use(middleware.RecoveryMiddleware(deps.Log))
	r.Use(telemetry.OTelMiddleware(deps.Cfg.OTELServiceName))
	if deps.Metrics != nil {
		r.Use(telemetry.MetricsMiddleware(deps.Metrics))
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/openapi.yaml", docs.OpenAPIHandler().ServeHTTP)
	r.Get("/docs", docs.ScalarDocsHandler("/openapi.yaml").ServeHTTP)

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Pool == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ready","note":"pool is nil"}`))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := deps.Pool.Ping(ctx); err != nil {
			deps.Log.Error(ctx, "readiness check failed: database unavailable", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","message":"database unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	// The pairing callback is the one route the bot relay calls. It is gated
	// by the shared-secret origin header, not by a user token.
	if deps.ChatBindingHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RelayOriginMiddleware(deps.Cfg.RelaySharedSecret, deps.Log))
			r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerCallerPerMin))
			r.Put("/chat-bindings", deps.ChatBindingHandler.PairChatBinding)
		})
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.JWTAuthMiddleware(deps.Validator, deps.Log))
		r.Use(middleware.RateLimitMiddleware(deps.RateLimiter, deps.Cfg.RateLimitPerCallerPerMin))

		if deps.WorkspaceHandler != nil {
			r.Route("/workspaces", func(r chi.Router) {
				r.Post("/", deps.WorkspaceHandler.CreateWorkspace)
				r.Get("/", deps.WorkspaceHandler.ListWorkspaces)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.WorkspaceHandler.GetWorkspace)
					r.Put("/", deps.WorkspaceHandler.UpdateWorkspace)
					r.Delete("/", deps.WorkspaceHandler.DeleteWorkspace)
				})
			})
		}

		// The {role} segment is a role name on GET and a role id on PUT and
		// DELETE, matching what the web client sends per method.
		if deps.RoleHandler != nil {
			r.Route("/roles", func(r chi.Router) {
				r.Post("/", deps.RoleHandler.CreateRole)
				r.Get("/", deps.RoleHandler.ListRoles)
				r.Get("/{role}", deps.RoleHandler.GetRoleByName)
				r.Put("/{role}", deps.RoleHandler.UpdateRole)
				r.Delete("/{role}", deps.RoleHandler.DeleteRole)
			})
		}

		if deps.RoleBindingHandler != nil {
			r.Route("/role-bindings", func(r chi.Router) {
				r.Post("/", deps.RoleBindingHandler.CreateRoleBinding)
				r.Get("/", deps.RoleBindingHandler.ListOwnRoleBindings)
				r.Get("/user/{userId}/workspace/{workspaceId}", deps.RoleBindingHandler.ListRoleBindingsByUserAndWorkspace)
				r.Get("/role/{roleId}/workspace/{workspaceId}", deps.RoleBindingHandler.ListRoleBindingsByRoleAndWorkspace)
				// {id} is a user id on GET and a binding id on DELETE.
				r.Get("/{id}", deps.RoleBindingHandler.ListRoleBindingsByUser)
				r.Delete("/{id}", deps.RoleBindingHandler.DeleteRoleBinding)
			})
		}

		if deps.WorkspaceUserHandler != nil {
			r.Route("/workspace-users", func(r chi.Router) {
				r.Post("/", deps.WorkspaceUserHandler.AddWorkspaceUser)
				r.Get("/", deps.WorkspaceUserHandler.ListWorkspaceUsers)
				r.Get("/me/{workspaceId}", deps.WorkspaceUserHandler.GetOwnMembership)
				r.Get("/check/{workspaceId}/{userId}", deps.WorkspaceUserHandler.CheckMembership)
				r.Delete("/{id}", deps.WorkspaceUserHandler.RemoveWorkspaceUser)
			})
		}

		if deps.SecretHandler != nil {
			r.Route("/secrets", func(r chi.Router) {
				r.Post("/", deps.SecretHandler.CreateSecret)
				r.Get("/workspace/{workspaceId}", deps.SecretHandler.ListSecretsByWorkspace)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", deps.SecretHandler.GetSecret)
					r.Put("/", deps.SecretHandler.UpdateSecret)
					r.Delete("/", deps.SecretHandler.DeleteSecret)
				})
			})
		}

		if deps.LogHandler != nil {
			r.Route("/logs", func(r chi.Router) {
				r.Get("/", deps.LogHandler.ListLogs)
				r.Get("/export", deps.LogHandler.ExportLogs)
				r.Get("/workspace/{workspaceId}", deps.LogHandler.ListLogsByWorkspace)
			})
		}

		if deps.EventBindingHandler != nil {
			r.Route("/event-bindings", func(r chi.Router) {
				r.Post("/", deps.EventBindingHandler.CreateEventBinding)
				r.Get("/", deps.EventBindingHandler.ListEventBindings)
				r.Put("/{id}", deps.EventBindingHandler.UpdateEventBinding)
				r.Delete("/{id}", deps.EventBindingHandler.DeleteEventBinding)
			})
		}

		// PUT on this path belongs to the relay group above; registering the
		// remaining methods directly keeps both method sets on one pattern.
		if deps.ChatBindingHandler != nil {
			r.Post("/chat-bindings", deps.ChatBindingHandler.CreateChatBinding)
			r.Get("/chat-bindings", deps.ChatBindingHandler.GetChatBinding)
			r.Delete("/chat-bindings", deps.ChatBindingHandler.DeleteChatBinding)
		}
	})

	return r
}
