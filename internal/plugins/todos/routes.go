package todos

import (
	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/plugins/auth"
	"github.com/taskbox-app/taskbox/internal/token"
)

// RegisterRoutes sets up all todo routes on the given Echo instance.
// Every route sits behind the session guard.
func RegisterRoutes(e *echo.Echo, h *Handler, tokens *token.Manager, cookieName string) {
	g := e.Group("/todos", auth.RequireSession(tokens, cookieName))

	// Stats route registered before /:id so "stats" never matches as an id.
	g.GET("/stats", h.Stats)

	g.GET("", h.List)
	g.POST("", h.Create)

	g.PATCH("/:id/toggle", h.Toggle)

	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
