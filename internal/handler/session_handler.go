package handler

import (
	"errors"
	"time"

	"github.com/andressep95/propertyhub/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SessionHandler struct {
	sessions *service.SessionService
	logger   zerolog.Logger
}

func NewSessionHandler(sessions *service.SessionService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With().Str("component", "session_handler").Logger(),
	}
}

// SessionResponse represents a session without sensitive data
type SessionResponse struct {
	ID        string  `json:"id"`
	UserAgent *string `json:"user_agent,omitempty"`
	IPAddress *string `json:"ip_address,omitempty"`
	ExpiresAt string  `json:"expires_at"`
	CreatedAt string  `json:"created_at"`
	IsCurrent bool    `json:"is_current"`
}

// GetMySessions lists all active sessions for the current user
// GET /api/users/me/sessions
func (h *SessionHandler) GetMySessions(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to retrieve sessions", func() error {
		current, ok := currentSession(c)
		if !ok {
			return nil
		}

		records, err := h.sessions.ListForUser(c.UserContext(), current.UserID)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to list sessions")
			return fail(c, fiber.StatusInternalServerError, "Failed to retrieve sessions")
		}

		response := make([]SessionResponse, len(records))
		for i, r := range records {
			response[i] = SessionResponse{
				ID:        r.ID.String(),
				UserAgent: r.UserAgent,
				IPAddress: r.IPAddress,
				ExpiresAt: r.ExpiresAt.Format(time.RFC3339),
				CreatedAt: r.CreatedAt.Format(time.RFC3339),
				IsCurrent: r.ID == current.ID,
			}
		}

		return c.JSON(fiber.Map{
			"sessions": response,
			"count":    len(response),
		})
	})
}

// DeleteSession closes one of the current user's sessions
// DELETE /api/users/me/sessions/:id
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, "Failed to delete session", func() error {
		current, ok := currentSession(c)
		if !ok {
			return nil
		}

		sessionID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid session ID")
		}

		if err := h.sessions.RevokeByID(c.UserContext(), current.UserID, sessionID); err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				return fail(c, fiber.StatusNotFound, "Session not found")
			}
			h.logger.Error().Err(err).Msg("failed to revoke session")
			return fail(c, fiber.StatusInternalServerError, "Failed to delete session")
		}

		return c.JSON(fiber.Map{
			"message": "Session closed successfully",
		})
	})
}
