package todos

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/apperror"
	"github.com/taskbox-app/taskbox/internal/plugins/auth"
)

// Handler handles HTTP requests for todos. Handlers are thin: they resolve
// the authenticated principal, bind the request, call the service, and
// shape the response envelope.
type Handler struct {
	service TodoService
}

// NewHandler creates a new todo handler with the given service.
func NewHandler(service TodoService) *Handler {
	return &Handler{service: service}
}

// List returns the caller's todos (GET /todos?filter=&sortBy=).
func (h *Handler) List(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	filter := ParseFilter(c.QueryParam("filter"))
	sortBy := ParseSortBy(c.QueryParam("sortBy"))

	items, err := h.service.List(c.Request().Context(), principal.ID, filter, sortBy)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Todo{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// Get returns a single owned todo (GET /todos/:id).
func (h *Handler) Get(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	todo, err := h.service.GetByID(c.Request().Context(), c.Param("id"), principal.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    todo,
	})
}

// Create adds a new todo (POST /todos).
func (h *Handler) Create(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	var req CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	todo, err := h.service.Create(c.Request().Context(), principal.ID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Todo created successfully",
		"data":    todo,
	})
}

// Update applies a partial update (PUT /todos/:id).
func (h *Handler) Update(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	var req UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	todo, err := h.service.Update(c.Request().Context(), c.Param("id"), principal.ID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Todo updated successfully",
		"data":    todo,
	})
}

// Toggle flips a todo's completion flag (PATCH /todos/:id/toggle).
func (h *Handler) Toggle(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	todo, err := h.service.Toggle(c.Request().Context(), c.Param("id"), principal.ID)
	if err != nil {
		return err
	}

	message := "Todo marked as incomplete"
	if todo.Completed {
		message = "Todo marked as completed"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"data":    todo,
	})
}

// Delete removes a todo (DELETE /todos/:id). The deleted snapshot drives
// the confirmation message; the payload itself is empty.
func (h *Handler) Delete(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	if _, err := h.service.Delete(c.Request().Context(), c.Param("id"), principal.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Todo deleted successfully",
		"data":    map[string]any{},
	})
}

// Stats returns the caller's aggregate counts (GET /todos/stats).
func (h *Handler) Stats(c echo.Context) error {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	stats, err := h.service.Stats(c.Request().Context(), principal.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"data":    stats,
	})
}
