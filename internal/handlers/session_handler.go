package handlers

import (
	"time"

	"github.com/bitesplus/bites-plus-server/internal/config"
	"github.com/bitesplus/bites-plus-server/internal/dto"
	"github.com/bitesplus/bites-plus-server/internal/middleware"
	"github.com/bitesplus/bites-plus-server/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	sessionService *services.SessionService
	cfg            *config.Config
}

func NewSessionHandler(sessionService *services.SessionService, cfg *config.Config) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, cfg: cfg}
}

func (h *SessionHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	token, expiresAt, err := h.sessionService.Issue(&req)
	if err != nil {
		return fail(c, err)
	}

	cookie := h.cookie(token)
	cookie.Expires = expiresAt
	c.Cookie(cookie)
	return c.JSON(dto.StatusResponse{Status: true})
}

func (h *SessionHandler) SignOut(c *fiber.Ctx) error {
	cookie := h.cookie("")
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(cookie)
	return c.JSON(dto.StatusResponse{Status: true})
}

// cookie builds the session cookie. Cross-site delivery needs SameSite=None,
// which browsers only accept on secure cookies.
func (h *SessionHandler) cookie(value string) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if h.cfg.Production() {
		cookie.SameSite = fiber.CookieSameSiteNoneMode
		cookie.Secure = true
	}
	return cookie
}
