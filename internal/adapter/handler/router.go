package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kindcoach/kindcoach-api/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	authHandler         *Auth
	conversationHandler *Conversation
	promptHandler       *Prompt
	dashboardHandler    *Dashboard
	authMW              echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	authHandler *Auth,
	conversationHandler *Conversation,
	promptHandler *Prompt,
	dashboardHandler *Dashboard,
	authMW echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:                 cfg,
		authHandler:         authHandler,
		conversationHandler: conversationHandler,
		promptHandler:       promptHandler,
		dashboardHandler:    dashboardHandler,
		authMW:              authMW,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupConversationRoutes(v1)
	rt.setupPromptRoutes(v1)
	rt.setupDashboardRoutes(v1)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.POST("/login", rt.authHandler.Login)
	authGroup.POST("/logout", rt.authHandler.Logout, rt.authMW)
	authGroup.GET("/me", rt.authHandler.Me, rt.authMW)
}

// setupConversationRoutes configures the conversation pipeline routes
func (rt *Router) setupConversationRoutes(g *echo.Group) {
	convGroup := g.Group("/conversations", rt.authMW)

	convGroup.POST("", rt.conversationHandler.Upload)
	convGroup.GET("", rt.conversationHandler.List)
	convGroup.GET("/:id", rt.conversationHandler.Get)
	convGroup.DELETE("/:id", rt.conversationHandler.Delete)
	convGroup.GET("/:id/status", rt.conversationHandler.Status)
	convGroup.POST("/:id/analyses/:kind", rt.conversationHandler.RunAnalysis)
	convGroup.GET("/:id/analyses/:kind", rt.conversationHandler.GetAnalysis)
	convGroup.GET("/:id/export", rt.conversationHandler.Export)
}

// setupPromptRoutes configures the prompt editor backend routes
func (rt *Router) setupPromptRoutes(g *echo.Group) {
	promptGroup := g.Group("/prompts", rt.authMW)

	promptGroup.GET("", rt.promptHandler.List)
	promptGroup.GET("/backups", rt.promptHandler.ListBackups)
	promptGroup.POST("/backups/:filename/restore", rt.promptHandler.Restore)
	promptGroup.GET("/:id", rt.promptHandler.Get)
	promptGroup.PUT("/:id", rt.promptHandler.Update)
	promptGroup.POST("/:id/validate", rt.promptHandler.Validate)
}

// setupDashboardRoutes configures dashboard routes
func (rt *Router) setupDashboardRoutes(g *echo.Group) {
	dashGroup := g.Group("/dashboard", rt.authMW)

	dashGroup.GET("/stats", rt.dashboardHandler.Stats)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "kindcoach-api",
	})
}
