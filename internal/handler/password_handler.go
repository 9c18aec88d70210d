package handler

import (
	"errors"

	"github.com/andressep95/propertyhub/internal/config"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type PasswordHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
	cookie      config.CookieConfig
	logger      zerolog.Logger
}

func NewPasswordHandler(authService *service.AuthService, validator *validator.Validator, cookie config.CookieConfig, logger zerolog.Logger) *PasswordHandler {
	return &PasswordHandler{
		authService: authService,
		validator:   validator,
		cookie:      cookie,
		logger:      logger.With().Str("component", "password_handler").Logger(),
	}
}

// ChangePassword handles password change requests. Every session of the user,
// including this one, is signed out.
// POST /api/users/me/password
func (h *PasswordHandler) ChangePassword(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to change password", func() error {
		session, ok := currentSession(c)
		if !ok {
			return nil
		}

		var req service.ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if err := h.validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}

		if err := h.authService.ChangePassword(c.UserContext(), session.UserID, req); err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCredentials):
				return fail(c, fiber.StatusUnauthorized, "Current password is incorrect")
			case errors.Is(err, service.ErrPasswordNotSet):
				return fail(c, fiber.StatusBadRequest, "This account signs in with an external provider")
			}
			h.logger.Error().Err(err).Str("user_id", session.UserID.String()).Msg("failed to change password")
			return fail(c, fiber.StatusInternalServerError, "Failed to change password")
		}

		clearSessionCookie(c, h.cookie)
		return c.JSON(fiber.Map{
			"message": "Password changed, all sessions have been signed out",
		})
	})
}
