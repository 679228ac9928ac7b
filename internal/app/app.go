// Package app wires the application together: Echo instance, middleware
// chain, error handling, and route registration. Feature plugins register
// their own routes; this package owns everything that spans features.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/apperror"
	"github.com/taskbox-app/taskbox/internal/config"
	"github.com/taskbox-app/taskbox/internal/middleware"
)

// App holds the application's top-level dependencies.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Echo   *echo.Echo
}

// New creates the application with middleware and error handling configured.
// Routes are registered separately via RegisterRoutes.
func New(cfg *config.Config, db *sql.DB) *App {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Resolve client IPs through the reverse proxy chain, if configured.
	middleware.TrustedProxies(e, cfg.TrustedProxies)

	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recovery())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{cfg.BaseURL},
		AllowCredentials: true,
	}))

	return &App{
		Config: cfg,
		DB:     db,
		Echo:   e,
	}
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("server listening", "addr", addr, "env", a.Config.Env)
	return a.Echo.Start(addr)
}

// Shutdown gracefully drains in-flight requests.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// errorHandler maps errors returned by handlers onto the JSON response
// envelope. AppErrors keep their status and client-safe message; everything
// else collapses to a generic 500 with the cause logged, never exposed.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal Server Error"

	switch e := err.(type) {
	case *apperror.AppError:
		code = e.Code
		message = e.Message
		if e.Internal != nil {
			slog.Error("request failed",
				"type", e.Type,
				"error", e.Internal,
				"path", c.Request().URL.Path,
			)
		}
	case *echo.HTTPError:
		code = e.Code
		if m, ok := e.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	default:
		slog.Error("unhandled error",
			"error", err,
			"path", c.Request().URL.Path,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, map[string]any{
			"success": false,
			"message": message,
		})
	}
	if writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}
