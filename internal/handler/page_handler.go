package handler

import (
	"errors"
	"strings"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const recentActivityLimit = 20

// PageHandler serves the server-rendered dashboard.
type PageHandler struct {
	orgService  *service.OrganizationService
	userService *service.UserService
	audit       *service.AuditService
	validator   *validator.Validator
	logger      zerolog.Logger
}

func NewPageHandler(
	orgService *service.OrganizationService,
	userService *service.UserService,
	audit *service.AuditService,
	validator *validator.Validator,
	logger zerolog.Logger,
) *PageHandler {
	return &PageHandler{
		orgService:  orgService,
		userService: userService,
		audit:       audit,
		validator:   validator,
		logger:      logger.With().Str("component", "page_handler").Logger(),
	}
}

// Dashboard redirects to the default dashboard page.
// GET /dashboard
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	return c.Redirect("/dashboard/settings", fiber.StatusSeeOther)
}

// Settings renders the organization settings page.
// GET /dashboard/settings
func (h *PageHandler) Settings(c *fiber.Ctx) error {
	return h.page(c, func(session *domain.Session) error {
		org, err := h.orgService.Get(c.UserContext(), session.OrganizationID)
		if err != nil {
			return err
		}
		return h.renderSettings(c, fiber.StatusOK, session, org, nil, c.Query("saved") == "1")
	})
}

// UpdateSettings lets admins rename the organization.
// POST /dashboard/settings
func (h *PageHandler) UpdateSettings(c *fiber.Ctx) error {
	return h.page(c, func(session *domain.Session) error {
		if !session.HasRole(domain.RoleAdmin) {
			return h.renderError(c, fiber.StatusForbidden, "Only administrators can change organization settings.")
		}

		var req service.OrganizationSettingsRequest
		if err := c.BodyParser(&req); err != nil {
			return h.renderError(c, fiber.StatusBadRequest, "The form could not be read.")
		}

		if err := h.validator.Validate(req); err != nil {
			org, getErr := h.orgService.Get(c.UserContext(), session.OrganizationID)
			if getErr != nil {
				return getErr
			}
			org.Name = req.Name
			return h.renderSettings(c, fiber.StatusUnprocessableEntity, session, org, validator.FieldErrors(err), false)
		}

		if _, err := h.orgService.UpdateSettings(c.UserContext(), session.OrganizationID, req); err != nil {
			return err
		}
		return c.Redirect("/dashboard/settings?saved=1", fiber.StatusSeeOther)
	})
}

// Users renders the team list with recent sign-in activity.
// GET /dashboard/users
func (h *PageHandler) Users(c *fiber.Ctx) error {
	return h.page(c, func(session *domain.Session) error {
		if !session.HasRole(domain.RoleAdmin, domain.RoleManager) {
			return h.renderError(c, fiber.StatusForbidden, "You do not have access to this page.")
		}

		search := strings.TrimSpace(c.Query("q"))
		result, err := h.userService.List(c.UserContext(), session.OrganizationID, c.QueryInt("page", 1), 25, search)
		if err != nil {
			return err
		}

		activity, err := h.audit.Recent(c.UserContext(), session.OrganizationID, recentActivityLimit)
		if err != nil {
			// the list is still useful without the activity panel
			h.logger.Warn().Err(err).Msg("failed to load recent activity")
			activity = nil
		}

		return c.Render("users", fiber.Map{
			"Title":    "Users",
			"Session":  session,
			"Users":    result.Users,
			"Total":    result.Total,
			"Page":     result.Page,
			"HasPrev":  result.Page > 1,
			"HasNext":  result.Page*result.PageSize < result.Total,
			"PrevPage": result.Page - 1,
			"NextPage": result.Page + 1,
			"Search":   search,
			"Activity": activity,
			"CanAdd":   session.HasRole(domain.RoleAdmin),
		}, "layout")
	})
}

// page resolves the session and maps any error from render to the generic error page.
func (h *PageHandler) page(c *fiber.Ctx, render func(session *domain.Session) error) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Internal server error", func() error {
		session, err := middleware.SessionFrom(c)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to resolve session")
			return h.renderError(c, fiber.StatusServiceUnavailable, "")
		}
		if session == nil {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}

		if err := render(session); err != nil {
			if errors.Is(err, service.ErrOrganizationNotFound) {
				return h.renderError(c, fiber.StatusNotFound, "This organization no longer exists.")
			}
			h.logger.Error().Err(err).Str("path", c.Path()).Msg("failed to render page")
			return h.renderError(c, fiber.StatusInternalServerError, "")
		}
		return nil
	})
}

func (h *PageHandler) renderSettings(c *fiber.Ctx, status int, session *domain.Session, org *domain.Organization, fields []validator.FieldError, saved bool) error {
	errs := make(map[string]string, len(fields))
	for _, f := range fields {
		errs[f.Field] = f.Message
	}
	return c.Status(status).Render("settings", fiber.Map{
		"Title":        "Settings",
		"Session":      session,
		"Organization": org,
		"CanEdit":      session.HasRole(domain.RoleAdmin),
		"Errors":       errs,
		"Saved":        saved,
	}, "layout")
}

func (h *PageHandler) renderError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "Something went wrong. Please try again later."
	}
	return c.Status(status).Render("error", fiber.Map{
		"Title":   "Error",
		"Status":  status,
		"Message": message,
	}, "layout")
}
