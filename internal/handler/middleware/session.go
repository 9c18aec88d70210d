package middleware

import (
	"context"
	"strings"

	"github.com/andressep95/propertyhub/internal/domain"
	"github.com/gofiber/fiber/v2"
)

const (
	localSession      = "session"
	localSessionError = "session_error"
	localUserID       = "user_id"
)

// SessionResolver turns a raw session token into a session. A nil session with a nil
// error means the request is anonymous.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// SessionMiddleware resolves the session once per request from the session cookie, falling back
// to a Bearer token. It never rejects a request; handlers and the Require* guards decide.
func SessionMiddleware(resolver SessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			token = bearerToken(c.Get(fiber.HeaderAuthorization))
		}
		if token == "" {
			return c.Next()
		}

		session, err := resolver.Resolve(c.UserContext(), token)
		switch {
		case err != nil:
			c.Locals(localSessionError, err)
		case session != nil:
			c.Locals(localSession, session)
			c.Locals(localUserID, session.UserID)
		}

		return c.Next()
	}
}

// SessionFrom returns the session resolved for this request. (nil, nil) means no session;
// an error means it could not be determined.
func SessionFrom(c *fiber.Ctx) (*domain.Session, error) {
	if err, ok := c.Locals(localSessionError).(error); ok && err != nil {
		return nil, err
	}
	session, _ := c.Locals(localSession).(*domain.Session)
	return session, nil
}

// RequireSession rejects anonymous API requests.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := SessionFrom(c)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to verify session",
			})
		}
		if session == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		return c.Next()
	}
}

// RequireSessionPage sends anonymous browsers to the login page.
func RequireSessionPage(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := SessionFrom(c)
		if err != nil {
			return fiber.ErrServiceUnavailable
		}
		if session == nil {
			return c.Redirect(loginPath, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
