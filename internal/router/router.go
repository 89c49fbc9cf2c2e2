package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/ebbingassist/backend/internal/config"
	"github.com/ebbingassist/backend/internal/handler"
	"github.com/ebbingassist/backend/internal/middleware"
	"github.com/ebbingassist/backend/internal/model"
)

// Deps are the constructed components the routes are wired to.
type Deps struct {
	Logger    *slog.Logger
	Auth      middleware.Authenticator
	Redis     *redis.Client // nil disables rate limiting
	RateLimit config.RateLimitConfig

	Health    *handler.HealthHandler
	AuthH     *handler.AuthHandler
	Users     *handler.UserHandler
	Knowledge *handler.KnowledgeHandler
	Plans     *handler.PlanHandler
	StudyLogs *handler.StudyLogHandler
}

// New returns an Echo instance with the error handler, the request
// middleware chain and every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	// RequestContext first so the logger sees the request id; Recover
	// innermost so panics surface as errors the logger records.
	e.Use(middleware.RequestContextMiddleware())
	e.Use(middleware.Logger(d.Logger))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{DisablePrintStack: true, DisableErrorHandler: true}))
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes registers the probes and the /api surface.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Liveness and readiness probes live outside /api and are never limited.
	e.GET("/health", handler.Health)
	if d.Health != nil {
		e.GET("/readyz", d.Health.Ready)
	}

	limit := middleware.RateLimit(d.RateLimit, d.Redis, d.Logger)
	protected := middleware.JWTAuth(d.Auth, model.TokenAccess)

	// Auth endpoints authenticate on their own: register and login need no
	// token, refresh and logout read the bearer token in the handler.
	auth := e.Group("/api/auth", limit)
	auth.POST("/register", d.AuthH.Register)
	auth.POST("/login", d.AuthH.Login)
	auth.POST("/refresh", d.AuthH.Refresh)
	auth.POST("/logout", d.AuthH.Logout)

	// Everything else requires a non-revoked access token.
	api := e.Group("/api", protected, limit)

	api.GET("/user/profile", d.Users.Profile)
	api.PUT("/user/profile", d.Users.UpdateProfile)
	api.PUT("/user/password", d.Users.ChangePassword, middleware.RequireFresh())

	api.GET("/knowledge/topics", d.Knowledge.ListTopics)
	api.POST("/knowledge/topics", d.Knowledge.CreateTopic)
	api.PUT("/knowledge/topics/:id", d.Knowledge.UpdateTopic)
	api.DELETE("/knowledge/topics/:id", d.Knowledge.DeleteTopic)
	api.GET("/knowledge/entries", d.Knowledge.ListEntries)
	api.POST("/knowledge/entries", d.Knowledge.CreateEntry)
	api.GET("/knowledge/entries/:id", d.Knowledge.GetEntry)
	api.PUT("/knowledge/entries/:id", d.Knowledge.UpdateEntry)
	api.DELETE("/knowledge/entries/:id", d.Knowledge.DeleteEntry)

	api.GET("/plans", d.Plans.ListPlans)
	api.POST("/plans", d.Plans.CreatePlan)
	api.GET("/plans/:id", d.Plans.GetPlan)
	api.PUT("/plans/:id", d.Plans.UpdatePlan)
	api.DELETE("/plans/:id", d.Plans.DeletePlan)
	api.POST("/plans/:id/tasks", d.Plans.CreateTask)
	api.PUT("/tasks/:id", d.Plans.UpdateTask)
	api.POST("/tasks/:id/complete", d.Plans.CompleteTask)

	api.POST("/study/logs", d.StudyLogs.Create)
	api.GET("/study/logs", d.StudyLogs.List)
}
