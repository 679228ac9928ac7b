package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/apperror"
	"github.com/taskbox-app/taskbox/internal/token"
)

// Handler handles HTTP requests for authentication. Handlers are thin: they
// bind the request, call the service, issue or clear the session cookie, and
// shape the response envelope. No business logic lives here.
type Handler struct {
	service    AuthService
	tokens     *token.Manager
	cookieName string
	cookieAge  int
	secure     bool
}

// NewHandler creates a new auth handler. secure controls the cookie Secure
// flag and should be true outside development.
func NewHandler(service AuthService, tokens *token.Manager, cookieName string, cookieMaxAge int, secure bool) *Handler {
	return &Handler{
		service:    service,
		tokens:     tokens,
		cookieName: cookieName,
		cookieAge:  cookieMaxAge,
		secure:     secure,
	}
}

// Register creates a new account (POST /auth/register), issues a session,
// and returns the user summary with a 201.
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return err
	}

	if err := h.issueSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Registration successful",
		"user":    user.Summary(),
	})
}

// Login authenticates a local account (POST /auth/login), issues a session,
// and returns the user summary.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	if err := h.issueSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    user.Summary(),
	})
}

// GoogleLogin completes a federated login (POST /auth/google). New and
// existing users both get a fresh session and a 200.
func (h *Handler) GoogleLogin(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	user, err := h.service.GoogleLogin(c.Request().Context(), GoogleInput{
		Sub:     req.Sub,
		Email:   req.Email,
		Name:    req.Name,
		Picture: req.Picture,
	})
	if err != nil {
		return err
	}

	if err := h.issueSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    user.Summary(),
	})
}

// Logout clears the session cookie (POST /auth/logout). No token validation:
// with stateless sessions there is nothing server-side to destroy, so logout
// always succeeds.
func (h *Handler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

// ChangePassword replaces the caller's password (PUT /auth/change-password).
// Guarded route — the principal comes from the verified session token. The
// cookie is left untouched; the existing session stays valid.
func (h *Handler) ChangePassword(c echo.Context) error {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		return apperror.NewUnauthorized("authentication required")
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	err := h.service.ChangePassword(c.Request().Context(), principal.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Password updated successfully",
	})
}

// --- Cookie helpers ---

// issueSession signs a token for the user and sets the session cookie.
// A signing failure here is a server configuration fault.
func (h *Handler) issueSession(c echo.Context, user *User) error {
	signed, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}
	h.setSessionCookie(c, signed)
	return nil
}

// setSessionCookie sets the session cookie on the response. The cookie is
// HttpOnly (JS can't read it), SameSite=Strict, and Secure in production.
func (h *Handler) setSessionCookie(c echo.Context, signed string) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   h.cookieAge,
	})
}

// clearSessionCookie removes the session cookie by setting MaxAge to -1.
func (h *Handler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
