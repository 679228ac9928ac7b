package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/token"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Login, registration, federated login, and logout are public; only
// change-password sits behind the session guard. The guard itself is
// exported (RequireSession) for the todos plugin to apply to its group.
func RegisterRoutes(e *echo.Echo, h *Handler, tokens *token.Manager, cookieName string) {
	g := e.Group("/auth")

	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/google", h.GoogleLogin)
	g.POST("/logout", h.Logout)

	g.PUT("/change-password", h.ChangePassword, RequireSession(tokens, cookieName))
}
