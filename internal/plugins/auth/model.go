// Package auth handles user accounts and authentication for Taskbox:
// registration, credential login, federated Google login, logout, password
// changes, and the session guard middleware applied to every task route.
//
// Sessions are stateless signed tokens (see internal/token) carried in an
// HTTP-only cookie, with a Bearer header accepted as a fallback channel.
package auth

import (
	"time"
)

// Roles a user account can hold. Register always assigns RoleUser; the role
// travels inside the session token so downstream code never re-reads it.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered Taskbox user. This is the domain model used
// throughout the application. Database scanning uses this struct directly;
// credential fields are never serialized.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	GoogleID     *string    `json:"-"` // Federated subject id, nil for local accounts.
	PasswordHash *string    `json:"-"` // Never expose. Nil for federated-only accounts.
	DisplayName  string     `json:"name"`
	AvatarURL    *string    `json:"avatar,omitempty"`
	Role         string     `json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Summary is the client-facing shape of a user returned by every auth
// endpoint: id, name, email, avatar, role — and nothing credential-shaped.
type Summary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar,omitempty"`
	Role   string  `json:"role"`
}

// Summary returns the client-facing projection of the user.
func (u *User) Summary() Summary {
	return Summary{
		ID:     u.ID,
		Name:   u.DisplayName,
		Email:  u.Email,
		Avatar: u.AvatarURL,
		Role:   u.Role,
	}
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted to POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest holds the data submitted to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest holds the federated identity payload submitted to
// POST /auth/google after the client completes the provider flow.
type GoogleLoginRequest struct {
	Sub     string  `json:"sub"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture,omitempty"`
}

// ChangePasswordRequest holds the data submitted to PUT /auth/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new local account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput is the validated input for authenticating a local account.
type LoginInput struct {
	Email    string
	Password string
}

// GoogleInput is the federated identity input for find-or-create login.
type GoogleInput struct {
	Sub     string
	Email   string
	Name    string
	Picture *string
}

// Principal is the authenticated identity decoded from a session token and
// attached to the request by the guard middleware. It is deliberately a
// plain value type — downstream handlers receive exactly what the token
// proved and nothing more.
type Principal struct {
	ID   string
	Role string
}
