package handler

import (
	"errors"

	"github.com/andressep95/propertyhub/internal/service"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validator
	logger      zerolog.Logger
}

func NewUserHandler(userService *service.UserService, validator *validator.Validator, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
		logger:      logger.With().Str("component", "user_handler").Logger(),
	}
}

// GetMe returns the current user's profile
// GET /api/users/me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to load user", func() error {
		session, ok := currentSession(c)
		if !ok {
			return nil
		}

		user, err := h.userService.GetByID(c.UserContext(), session.UserID)
		if errors.Is(err, service.ErrUserNotFound) {
			return fail(c, fiber.StatusNotFound, "User not found")
		}
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to load user")
			return fail(c, fiber.StatusInternalServerError, "Failed to load user")
		}

		return c.JSON(service.NewUserDTO(user))
	})
}

// List returns the users of the caller's organization
// GET /api/users?page=1&page_size=25&q=
func (h *UserHandler) List(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to list users", func() error {
		session, ok := currentSession(c)
		if !ok {
			return nil
		}

		result, err := h.userService.List(c.UserContext(), session.OrganizationID, c.QueryInt("page", 1), c.QueryInt("page_size", 25), c.Query("q"))
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to list users")
			return fail(c, fiber.StatusInternalServerError, "Failed to list users")
		}

		return c.JSON(result)
	})
}

// Create adds a user to the caller's organization
// POST /api/users
func (h *UserHandler) Create(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to create user", func() error {
		session, ok := currentSession(c)
		if !ok {
			return nil
		}

		var req service.CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if err := h.validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}

		user, err := h.userService.Create(c.UserContext(), session.OrganizationID, req)
		if errors.Is(err, service.ErrEmailTaken) {
			return fail(c, fiber.StatusConflict, "A user with this email already exists")
		}
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to create user")
			return fail(c, fiber.StatusInternalServerError, "Failed to create user")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "User created successfully",
			"user":    service.NewUserDTO(user),
		})
	})
}
