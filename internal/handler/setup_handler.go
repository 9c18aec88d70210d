package handler

import (
	"errors"

	"github.com/andressep95/propertyhub/internal/service"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type SetupHandler struct {
	userService *service.UserService
	validator   *validator.Validator
	logger      zerolog.Logger
}

func NewSetupHandler(userService *service.UserService, validator *validator.Validator, logger zerolog.Logger) *SetupHandler {
	return &SetupHandler{
		userService: userService,
		validator:   validator,
		logger:      logger.With().Str("component", "setup_handler").Logger(),
	}
}

// Setup creates the first organization and its admin.
// This endpoint only works while no user exists.
// POST /api/setup
func (h *SetupHandler) Setup(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to complete setup", func() error {
		var req service.SetupRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if err := h.validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}

		org, admin, err := h.userService.Bootstrap(c.UserContext(), req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSetupComplete):
				return fail(c, fiber.StatusConflict, "Setup has already been completed")
			case errors.Is(err, service.ErrInvalidSlug):
				return fail(c, fiber.StatusBadRequest, "Organization name must contain at least three letters or digits")
			}
			h.logger.Error().Err(err).Msg("setup failed")
			return fail(c, fiber.StatusInternalServerError, "Failed to complete setup")
		}

		h.logger.Info().
			Str("organization_id", org.ID.String()).
			Str("user_id", admin.ID.String()).
			Msg("initial setup completed")

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"organization": org,
			"user":         service.NewUserDTO(admin),
		})
	})
}
