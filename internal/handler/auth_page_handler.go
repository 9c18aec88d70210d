package handler

import (
	"strings"

	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/gofiber/fiber/v2"
)

const dashboardPath = "/dashboard"

// ShowLogin renders the login page. Signed-in users go straight to the dashboard.
// GET /login
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	if session, err := middleware.SessionFrom(c); err == nil && session != nil {
		return c.Redirect(dashboardPath, fiber.StatusSeeOther)
	}
	return renderLogin(c, fiber.StatusOK, "", "")
}

// SubmitLogin handles the login form and redirects to the dashboard on success.
// POST /login
func (h *AuthHandler) SubmitLogin(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to sign in", func() error {
		var req service.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return renderLogin(c, fiber.StatusBadRequest, "", "Enter your email and password.")
		}
		req.Email = strings.TrimSpace(req.Email)

		if err := h.validator.Validate(req); err != nil {
			return renderLogin(c, fiber.StatusUnprocessableEntity, req.Email, "Enter a valid email and password.")
		}

		if _, err := h.signIn(c, req); err != nil {
			status, message := loginFailure(err)
			if status == fiber.StatusInternalServerError {
				h.logger.Error().Err(err).Msg("login failed")
				message = "Something went wrong. Please try again."
			}
			return renderLogin(c, status, req.Email, message)
		}

		return c.Redirect(dashboardPath, fiber.StatusSeeOther)
	})
}

// SubmitLogout signs the browser out and returns to the login page.
// POST /logout
func (h *AuthHandler) SubmitLogout(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to log logout", func() error {
		if err := h.signOut(c); err != nil {
			return c.Status(fiber.StatusInternalServerError).Render("error", fiber.Map{
				"Title":   "Error",
				"Status":  fiber.StatusInternalServerError,
				"Message": "We could not sign you out. Please try again.",
			}, "layout")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	})
}

func renderLogin(c *fiber.Ctx, status int, email, message string) error {
	return c.Status(status).Render("login", fiber.Map{
		"Title": "Sign in",
		"Email": email,
		"Error": message,
	}, "layout")
}
