package auth

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskbox-app/taskbox/internal/apperror"
	"github.com/taskbox-app/taskbox/internal/token"
)

// contextKeyPrincipal is the Echo context key under which the guard stores
// the authenticated principal. Other packages read it through
// CurrentPrincipal — never through c.Get directly.
const contextKeyPrincipal = "auth_principal"

// RequireSession returns the access guard middleware applied to every task
// route and the password-change route. It locates the session token in the
// cookie first, falling back to an "Authorization: Bearer" header; the
// cookie wins when both are present.
//
// The status contract is asymmetric on purpose:
//   - no token anywhere      → 401 "Access Denied: Token missing."
//   - token present but bad  → 403 "Invalid or expired token."
//   - server has no secret   → 500 (configuration fault, logged)
func RequireSession(tokens *token.Manager, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c, cookieName)
			if raw == "" {
				return apperror.NewUnauthorized("Access Denied: Token missing.")
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				if errors.Is(err, token.ErrMissingSecret) {
					slog.Error("session verification impossible: signing secret not configured")
					return apperror.NewInternal(err)
				}
				return apperror.NewForbidden("Invalid or expired token.")
			}

			c.Set(contextKeyPrincipal, Principal{ID: claims.UserID, Role: claims.Role})
			return next(c)
		}
	}
}

// extractToken returns the session token from the cookie, or from the
// Authorization header when the cookie is absent, or "".
func extractToken(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header {
		// Header present but not Bearer-shaped; treat as no token.
		return ""
	}
	return strings.TrimSpace(raw)
}

// CurrentPrincipal retrieves the authenticated principal from the Echo
// context. The second return is false when the guard did not run, which on
// a guarded route means a wiring bug — callers should fail closed with 401.
func CurrentPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(contextKeyPrincipal).(Principal)
	return p, ok
}
