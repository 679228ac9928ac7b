package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskbox-app/taskbox/internal/token"
)

const (
	guardTestSecret = "guard-test-secret-0123456789abcdef"
	guardCookieName = "auth_token"
)

// invokeGuard runs the session guard around a handler that records the
// principal it received, and returns the guard's error (nil on pass).
func invokeGuard(t *testing.T, tokens *token.Manager, mutate func(*http.Request)) (Principal, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen Principal
	handler := RequireSession(tokens, guardCookieName)(func(c echo.Context) error {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok, "guard passed but no principal attached")
		seen = p
		return c.NoContent(http.StatusOK)
	})

	return seen, handler(c)
}

func guardTokens(t *testing.T) *token.Manager {
	t.Helper()
	return token.NewManager(guardTestSecret, time.Hour)
}

func TestRequireSession_NoToken(t *testing.T) {
	_, err := invokeGuard(t, guardTokens(t), nil)

	appErr := assertAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Access Denied: Token missing.", appErr.Message)
}

func TestRequireSession_InvalidToken(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*http.Request)
	}{
		{
			"garbage cookie",
			func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: guardCookieName, Value: "not-a-token"})
			},
		},
		{
			"garbage bearer",
			func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
			},
		},
		{
			"token signed with another secret",
			func(r *http.Request) {
				other := token.NewManager("a-completely-different-secret-key!", time.Hour)
				signed, err := other.Issue("user-1", RoleUser)
				require.NoError(t, err)
				r.AddCookie(&http.Cookie{Name: guardCookieName, Value: signed})
			},
		},
		{
			"expired token",
			func(r *http.Request) {
				expired := token.NewManager(guardTestSecret, -time.Minute)
				signed, err := expired.Issue("user-1", RoleUser)
				require.NoError(t, err)
				r.AddCookie(&http.Cookie{Name: guardCookieName, Value: signed})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := invokeGuard(t, guardTokens(t), tt.mutate)

			appErr := assertAppError(t, err, http.StatusForbidden)
			assert.Equal(t, "Invalid or expired token.", appErr.Message)
		})
	}
}

func TestRequireSession_ValidCookie(t *testing.T) {
	tokens := guardTokens(t)
	signed, err := tokens.Issue("user-42", RoleUser)
	require.NoError(t, err)

	principal, err := invokeGuard(t, tokens, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: guardCookieName, Value: signed})
	})

	require.NoError(t, err)
	assert.Equal(t, "user-42", principal.ID)
	assert.Equal(t, RoleUser, principal.Role)
}

func TestRequireSession_BearerFallback(t *testing.T) {
	tokens := guardTokens(t)
	signed, err := tokens.Issue("user-42", RoleAdmin)
	require.NoError(t, err)

	principal, err := invokeGuard(t, tokens, func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	})

	require.NoError(t, err)
	assert.Equal(t, "user-42", principal.ID)
	assert.Equal(t, RoleAdmin, principal.Role)
}

// The cookie wins when both channels carry a token.
func TestRequireSession_CookieTakesPrecedence(t *testing.T) {
	tokens := guardTokens(t)
	signed, err := tokens.Issue("cookie-user", RoleUser)
	require.NoError(t, err)

	principal, err := invokeGuard(t, tokens, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: guardCookieName, Value: signed})
		r.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	})

	require.NoError(t, err)
	assert.Equal(t, "cookie-user", principal.ID)

	// And the inverse: a bad cookie is not rescued by a good header.
	_, err = invokeGuard(t, tokens, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: guardCookieName, Value: "not-a-token"})
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	})
	assertAppError(t, err, http.StatusForbidden)
}

// A non-Bearer Authorization header is ignored, not treated as a bad token.
func TestRequireSession_NonBearerHeaderIgnored(t *testing.T) {
	_, err := invokeGuard(t, guardTokens(t), func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
	})

	appErr := assertAppError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "Access Denied: Token missing.", appErr.Message)
}

// An unconfigured signing secret is a server fault, never a client 4xx.
func TestRequireSession_MissingSecret(t *testing.T) {
	unconfigured := token.NewManager("", time.Hour)

	_, err := invokeGuard(t, unconfigured, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: guardCookieName, Value: "anything"})
	})

	assertAppError(t, err, http.StatusInternalServerError)
}
