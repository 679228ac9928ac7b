package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	m := NewManager(testSecret, 7*24*time.Hour)

	signed, err := m.Issue("user-42", "user")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "user", claims.Role)

	// Expiry lands ttl from issuance.
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestIssue_MissingSecret(t *testing.T) {
	m := NewManager("", time.Hour)

	_, err := m.Issue("user-1", "user")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerify_MissingSecret(t *testing.T) {
	m := NewManager(testSecret, time.Hour)
	signed, err := m.Issue("user-1", "user")
	require.NoError(t, err)

	_, err = NewManager("", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager(testSecret, -time.Minute)

	signed, err := m.Issue("user-1", "user")
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	signed, err := NewManager(testSecret, time.Hour).Issue("user-1", "user")
	require.NoError(t, err)

	_, err = NewManager("another-secret-key-0123456789abcd", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	m := NewManager(testSecret, time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q should be rejected", tok)
	}
}

func TestVerify_UnsignedAlgRejected(t *testing.T) {
	// A token declaring alg=none must never verify, even with valid claims.
	claims := &Claims{
		UserID: "user-1",
		Role:   "user",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager(testSecret, time.Hour).Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingSubjectRejected(t *testing.T) {
	// A structurally valid token without a user id is useless downstream;
	// treat it the same as malformed.
	claims := &Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewManager(testSecret, time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
