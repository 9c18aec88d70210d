package handler

import (
	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type UtilityAccountHandler struct {
	accounts *service.UtilityAccountService
	logger   zerolog.Logger
}

func NewUtilityAccountHandler(accounts *service.UtilityAccountService, logger zerolog.Logger) *UtilityAccountHandler {
	return &UtilityAccountHandler{
		accounts: accounts,
		logger:   logger.With().Str("component", "utility_account_handler").Logger(),
	}
}

// List returns the organization's utility accounts
// GET /api/utility-accounts
func (h *UtilityAccountHandler) List(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to list utility accounts", func() error {
		session, ok := currentSession(c)
		if !ok {
			return nil
		}

		accounts, err := h.accounts.List(c.UserContext(), session.OrganizationID)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to list utility accounts")
			return fail(c, fiber.StatusInternalServerError, "Failed to list utility accounts")
		}
		if accounts == nil {
			accounts = []*domain.UtilityAccount{}
		}

		return c.JSON(fiber.Map{
			"utility_accounts": accounts,
			"utility_types":    domain.UtilityTypes,
		})
	})
}

// Create validates and stores a utility account. Invalid input gets 422 with one entry per field.
// POST /api/utility-accounts
func (h *UtilityAccountHandler) Create(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to create utility account", func() error {
		session, ok := currentSession(c)
		if !ok {
			return nil
		}

		var req service.UtilityAccountRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		if fields := h.accounts.Validate(req); len(fields) > 0 {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": fields,
			})
		}

		account, err := h.accounts.Create(c.UserContext(), session.OrganizationID, req)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to create utility account")
			return fail(c, fiber.StatusInternalServerError, "Failed to create utility account")
		}

		return c.Status(fiber.StatusCreated).JSON(account)
	})
}
