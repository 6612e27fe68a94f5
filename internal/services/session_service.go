package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidIdentity = errors.New("invalid identity claims")

// Identity is the verified caller behind a session cookie.
type Identity struct {
	Email    string
	Name     string
	UID      string
	PhotoURL string
}

type SessionService struct {
	cfg *config.Config
	now func() time.Time
}

func NewSessionService(cfg *config.Config) *SessionService {
	return &SessionService{cfg: cfg, now: time.Now}
}

// Issue signs a session token for the identity claims posted by the client.
// The claims come from the external identity provider and are trusted as is.
func (s *SessionService) Issue(req *dto.SignInRequest) (string, time.Time, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %s", ErrInvalidIdentity, describeValidation(err))
	}

	email := strings.ToLower(req.Email)
	sub := req.UID
	if sub == "" {
		sub = email
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	claims := jwt.MapClaims{
		"sub":     sub,
		"email":   email,
		"name":    req.Name,
		"picture": req.PhotoURL,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// IdentityFromClaims reads the identity a session token was issued for.
func IdentityFromClaims(claims jwt.MapClaims) (Identity, error) {
	email, _ := claims["email"].(string)
	if email == "" {
		return Identity{}, ErrInvalidIdentity
	}
	id := Identity{Email: email}
	id.Name, _ = claims["name"].(string)
	id.PhotoURL, _ = claims["picture"].(string)
	if sub, _ := claims["sub"].(string); sub != email {
		id.UID = sub
	}
	return id, nil
}
