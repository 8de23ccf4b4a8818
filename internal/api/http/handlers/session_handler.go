package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/membership-portal/internal/api/dto"
	"github.com/spec-kit/membership-portal/internal/auth"
	"github.com/spec-kit/membership-portal/internal/service"
	apperrors "github.com/spec-kit/membership-portal/pkg/util/errorutil"
)

// SessionHandler exposes sign-in and the current identity.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{service: sessionService}
}

// Login POST /auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), c.IP(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        dto.IdentityFromDomain(result.Identity),
	}})
}

// Me GET /api/me.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	identity, err := auth.IdentityFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.IdentityFromDomain(identity)})
}

// Labels GET /api/labels.
func (h *SessionHandler) Labels(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.Labels()})
}
