// Package token implements session token issuance and verification for
// Taskbox. Tokens are HMAC-signed JWTs embedding the subject user id and
// role with a bounded lifetime. Validity is purely a function of signature
// and expiry — there is no server-side session store or revocation list, so
// logout only clears the client-held copy.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSecret indicates the manager was constructed without a
	// signing secret. This is a server configuration fault (500-class),
	// not a problem with any particular token.
	ErrMissingSecret = errors.New("token: signing secret is not configured")

	// ErrInvalidToken covers every per-token failure: bad signature,
	// malformed structure, wrong signing method, or elapsed expiry.
	// Callers never learn which — there is no lenient acceptance.
	ErrInvalidToken = errors.New("token: invalid or expired token")
)

// Claims is the payload embedded in every session token.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens with a server-held secret.
// Construct once at startup and inject wherever tokens are handled.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager. The secret must be validated by the
// caller at startup (config.Load fails fast on a missing secret); ttl is
// the token lifetime, 7 days in the default configuration.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token embedding the user id and role, expiring
// ttl from now. Returns ErrMissingSecret if no secret is configured.
func (m *Manager) Issue(userID, role string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
// Returns ErrMissingSecret when the server has no secret, and
// ErrInvalidToken for any signature, structure, or expiry failure.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// Accept only the HMAC method we issue with. An attacker supplying
		// an RS256 token with the public key as secret must not pass.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
