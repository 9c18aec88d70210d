package handler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

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

// Authenticator checks credentials and issues a session.
type Authenticator interface {
	Login(ctx context.Context, req service.LoginRequest, client clientinfo.Info) (*service.LoginResult, error)
}

// SessionRevoker ends a resolved session.
type SessionRevoker interface {
	Revoke(ctx context.Context, session *domain.Session) error
}

// AuditRecorder appends login and logout events.
type AuditRecorder interface {
	Record(ctx context.Context, kind domain.AuditEventKind, userID uuid.UUID, ip, userAgent string) error
}

// ReportGenerator produces the opportunity loss CSV document.
type ReportGenerator interface {
	GenerateOpportunityLoss(ctx context.Context, filter service.OpportunityLossFilter) ([]byte, error)
}

// guard runs fn and turns a panic into the handler's fixed error response.
func guard(c *fiber.Ctx, logger zerolog.Logger, status int, message string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
				Str("path", c.Path()).
				Str("panic", fmt.Sprintf("%v", r)).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			err = fail(c, status, message)
		}
	}()
	return fn()
}

// fail discards anything written so far and sends {"error": message}.
func fail(c *fiber.Ctx, status int, message string) error {
	c.Response().Header.Del(fiber.HeaderContentDisposition)
	c.Response().ResetBody()
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": validator.FieldErrors(err),
	})
}

// currentSession returns the resolved session or writes a 401.
func currentSession(c *fiber.Ctx) (*domain.Session, bool) {
	session, err := middleware.SessionFrom(c)
	if err != nil || session == nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
		return nil, false
	}
	return session, true
}

func setSessionCookie(c *fiber.Ctx, cfg config.CookieConfig, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expiresAt,
		Secure:   cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx, cfg config.CookieConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   cfg.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
