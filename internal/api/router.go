package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "propdesk/internal/api/context"
	"propdesk/internal/api/handlers"
	"propdesk/internal/api/middleware"
	"propdesk/internal/pkg/errors"
	"propdesk/internal/platform/auth"
	"propdesk/internal/platform/models"
)

type Dependencies struct {
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	AccountHandler  *handlers.AccountHandler
	WebhookHandler  *handlers.WebhookHandler
	TemplateHandler *handlers.TemplateHandler
	OutboxHandler   *handlers.OutboxHandler
	HealthHandler   *handlers.HealthHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter
	WebhookPerMin   int
	APIPerMin       int
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware
	webhookLimit := deps.RateLimiter.Limit("webhook", deps.WebhookPerMin)
	apiLimit := deps.RateLimiter.Limit("api", deps.APIPerMin)

	router.GET("/health", wrap(deps.HealthHandler.Check))

	// Inbound platform notifications: signature-authenticated, not session-authenticated.
	router.POST("/api/v1/webhooks/volumetrica", chain(deps.WebhookHandler.Receive, webhookLimit))

	// Authentication
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, apiLimit))
	router.POST("/api/v1/auth/refresh", chain(deps.AuthHandler.Refresh, apiLimit))

	// Trading accounts
	router.POST("/api/v1/accounts",
		chain(deps.AccountHandler.Create, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.GET("/api/v1/accounts",
		chain(deps.AccountHandler.List, apiLimit, authMid.Handle))
	router.GET("/api/v1/accounts/:account_id",
		chain(deps.AccountHandler.Get, apiLimit, authMid.Handle))
	router.POST("/api/v1/accounts/:account_id/disable",
		chain(deps.AccountHandler.Disable, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))

	// Admin console: users
	router.POST("/api/v1/users",
		chain(deps.UserHandler.Create, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.GET("/api/v1/users",
		chain(deps.UserHandler.List, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.GET("/api/v1/users/:user_id",
		chain(deps.UserHandler.Get, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.PATCH("/api/v1/users/:user_id/role",
		chain(deps.UserHandler.UpdateRole, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.DELETE("/api/v1/users/:user_id",
		chain(deps.UserHandler.Delete, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))

	// Admin console: event ledger
	router.GET("/api/v1/events",
		chain(deps.WebhookHandler.ListEvents, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))

	// Admin console: email templates and outbox
	router.POST("/api/v1/templates",
		chain(deps.TemplateHandler.Create, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.GET("/api/v1/templates",
		chain(deps.TemplateHandler.List, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.GET("/api/v1/templates/:template_id",
		chain(deps.TemplateHandler.Get, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.PATCH("/api/v1/templates/:template_id",
		chain(deps.TemplateHandler.Update, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.DELETE("/api/v1/templates/:template_id",
		chain(deps.TemplateHandler.Deactivate, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.GET("/api/v1/outbox",
		chain(deps.OutboxHandler.List, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))
	router.POST("/api/v1/outbox/send",
		chain(deps.OutboxHandler.Send, apiLimit, authMid.Handle, requireRole(models.RoleAdmin)))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

func requireRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
				return
			}

			next(w, r)
		}
	}
}
