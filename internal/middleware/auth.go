package middleware

import (
	"errors"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the signed session token.
const SessionCookie = "access_token"

// SessionRequired rejects requests without a valid, unexpired session cookie.
func SessionRequired(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		TokenLookup: "cookie:" + SessionCookie,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Kind:    "AuthRequired",
				Message: "Unauthorized Access",
			})
		},
	})
}

// SessionRequiredWhen applies SessionRequired only to requests matching pred.
func SessionRequiredWhen(cfg *config.Config, pred func(c *fiber.Ctx) bool) fiber.Handler {
	required := SessionRequired(cfg)
	return func(c *fiber.Ctx) error {
		if pred(c) {
			return required(c)
		}
		return c.Next()
	}
}

// CurrentIdentity returns the identity of the verified session, if any.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return services.Identity{}, errors.New("no session in context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return services.Identity{}, errors.New("invalid claims")
	}
	return services.IdentityFromClaims(claims)
}
