package services

import (
	"testing"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionService() *SessionService {
	s := NewSessionService(&config.Config{JWTSecret: "test-secret", SessionTTL: time.Hour})
	s.now = func() time.Time { return time.Now().Truncate(time.Second) }
	return s
}

func TestIssueRoundTrip(t *testing.T) {
	s := newSessionService()

	token, expiresAt, err := s.Issue(&dto.SignInRequest{
		Email:    " Dana@X.com ",
		Name:     "Dana",
		UID:      "uid-d",
		PhotoURL: "https://img/dana.png",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 2*time.Second)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil },
		jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)

	id, err := IdentityFromClaims(parsed.Claims.(jwt.MapClaims))
	require.NoError(t, err)
	assert.Equal(t, Identity{Email: "dana@x.com", Name: "Dana", UID: "uid-d", PhotoURL: "https://img/dana.png"}, id)
}

func TestIssueWithoutUID(t *testing.T) {
	s := newSessionService()
	token, _, err := s.Issue(&dto.SignInRequest{Email: "r@x.com"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "r@x.com", claims["sub"])

	id, err := IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Empty(t, id.UID)
}

func TestIssueTrimsPaddedEmail(t *testing.T) {
	s := newSessionService()
	token, _, err := s.Issue(&dto.SignInRequest{Email: " a@x.com "})
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", parsed.Claims.(jwt.MapClaims)["email"])
}

func TestIssueRejectsBadEmail(t *testing.T) {
	s := newSessionService()
	for _, email := range []string{"", "not-an-email"} {
		_, _, err := s.Issue(&dto.SignInRequest{Email: email})
		assert.ErrorIs(t, err, ErrInvalidIdentity, email)
	}
}

func TestIdentityFromClaimsNeedsEmail(t *testing.T) {
	_, err := IdentityFromClaims(jwt.MapClaims{"sub": "uid"})
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}
