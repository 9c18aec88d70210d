package handler

import (
	"errors"

	"github.com/andressep95/propertyhub/internal/config"
	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/andressep95/propertyhub/pkg/clientinfo"
	"github.com/andressep95/propertyhub/pkg/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	auth      Authenticator
	sessions  SessionRevoker
	audit     AuditRecorder
	validator *validator.Validator
	cookie    config.CookieConfig
	logger    zerolog.Logger
}

func NewAuthHandler(
	auth Authenticator,
	sessions SessionRevoker,
	audit AuditRecorder,
	validator *validator.Validator,
	cookie config.CookieConfig,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		sessions:  sessions,
		audit:     audit,
		validator: validator,
		cookie:    cookie,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to sign in", func() error {
		var req service.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if err := h.validator.Validate(req); err != nil {
			return validationFailed(c, err)
		}

		result, err := h.signIn(c, req)
		if err != nil {
			status, message := loginFailure(err)
			if status == fiber.StatusInternalServerError {
				h.logger.Error().Err(err).Msg("login failed")
			}
			return fail(c, status, message)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"user":       result.User,
			"expires_at": result.ExpiresAt,
		})
	})
}

// Logout ends the current session if there is one and records a LOGOUT event.
// Without a session it still answers 200; a failed audit write does not fail the request.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to log logout", func() error {
		if err := h.signOut(c); err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to log logout")
		}
		return c.JSON(fiber.Map{
			"success": true,
		})
	})
}

// signOut revokes the current session, records the LOGOUT event and clears the cookie.
func (h *AuthHandler) signOut(c *fiber.Ctx) error {
	session, err := middleware.SessionFrom(c)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to resolve session on logout")
		return err
	}

	if session != nil {
		if err := h.sessions.Revoke(c.UserContext(), session); err != nil {
			h.logger.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to revoke session")
			return err
		}
		h.recordAudit(c, domain.AuditEventLogout, session.UserID)
	}

	clearSessionCookie(c, h.cookie)
	return nil
}

// signIn authenticates, sets the session cookie and records the LOGIN event.
func (h *AuthHandler) signIn(c *fiber.Ctx, req service.LoginRequest) (*service.LoginResult, error) {
	result, err := h.auth.Login(c.UserContext(), req, clientinfo.FromFiber(c))
	if err != nil {
		return nil, err
	}

	setSessionCookie(c, h.cookie, result.Token, result.ExpiresAt)
	h.recordAudit(c, domain.AuditEventLogin, result.User.ID)
	return result, nil
}

// recordAudit is best effort: failures are logged and counted, never returned.
func (h *AuthHandler) recordAudit(c *fiber.Ctx, kind domain.AuditEventKind, userID uuid.UUID) {
	client := clientinfo.FromFiber(c)
	auditErr := h.audit.Record(c.UserContext(), kind, userID, client.IP, client.UserAgent)
	if auditErr != nil {
		h.logger.Warn().
			Err(auditErr).
			Str("kind", string(kind)).
			Str("user_id", userID.String()).
			Msg("failed to record audit event")
	}
}

func loginFailure(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, service.ErrAccountLocked):
		return fiber.StatusLocked, "Account temporarily locked, try again later"
	case errors.Is(err, service.ErrAccountInactive):
		return fiber.StatusForbidden, "Account is not active"
	}
	return fiber.StatusInternalServerError, "Failed to sign in"
}
