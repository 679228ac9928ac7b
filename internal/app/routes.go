package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/plugins/auth"
	"github.com/taskbox-app/taskbox/internal/plugins/todos"
	"github.com/taskbox-app/taskbox/internal/token"
)

// RegisterRoutes constructs each feature plugin (repository, service,
// handler) and mounts its routes. Construction order does not matter; the
// plugins only share the database handle and the token manager.
func (a *App) RegisterRoutes() {
	a.Echo.GET("/healthz", a.healthz)

	tokens := token.NewManager(a.Config.Auth.SecretKey, a.Config.Auth.TokenTTL)
	cookieName := a.Config.Auth.CookieName

	// Auth plugin.
	userRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(userRepo, a.Config.Auth.BcryptCost)
	authHandler := auth.NewHandler(
		authService,
		tokens,
		cookieName,
		int(a.Config.Auth.TokenTTL.Seconds()),
		!a.Config.IsDevelopment(),
	)
	auth.RegisterRoutes(a.Echo, authHandler, tokens, cookieName)

	// Todos plugin.
	todoRepo := todos.NewTodoRepository(a.DB)
	todoService := todos.NewTodoService(todoRepo)
	todoHandler := todos.NewHandler(todoService)
	todos.RegisterRoutes(a.Echo, todoHandler, tokens, cookieName)
}

// healthz reports liveness and database reachability.
func (a *App) healthz(c echo.Context) error {
	if err := a.DB.PingContext(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"status":  "degraded",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"status":  "ok",
	})
}
