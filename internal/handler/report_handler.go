package handler

import (
	"fmt"
	"time"

	"github.com/andressep95/propertyhub/internal/handler/middleware"
	"github.com/andressep95/propertyhub/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	reportDateLayout    = "2006-01-02"
	reportFailedMessage = "Failed to generate report"
)

type ReportHandler struct {
	reports ReportGenerator
	logger  zerolog.Logger
	now     func() time.Time
}

func NewReportHandler(reports ReportGenerator, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger.With().Str("component", "report_handler").Logger(),
		now:     time.Now,
	}
}

// OpportunityLoss streams the report as a CSV attachment named after today's UTC date.
// The report covers the caller's organization, or every organization for anonymous access.
// GET /api/reports/opportunity-loss
func (h *ReportHandler) OpportunityLoss(c *fiber.Ctx) error {
	return guard(c, h.logger, fiber.StatusInternalServerError, reportFailedMessage, func() error {
		now := h.now()
		filter := service.OpportunityLossFilter{AsOf: now}

		session, err := middleware.SessionFrom(c)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to resolve session for report")
			return fail(c, fiber.StatusInternalServerError, reportFailedMessage)
		}
		if session != nil {
			orgID := session.OrganizationID
			filter.OrganizationID = &orgID
		}

		out, err := h.reports.GenerateOpportunityLoss(c.UserContext(), filter)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to generate opportunity loss report")
			return fail(c, fiber.StatusInternalServerError, reportFailedMessage)
		}

		filename := fmt.Sprintf("opportunity_loss_report_%s.csv", now.UTC().Format(reportDateLayout))
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Status(fiber.StatusOK).Send(out)
	})
}

// RequireSession rejects anonymous report downloads with 401. A failed session lookup
// answers with the report's own failure body.
func (h *ReportHandler) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := middleware.SessionFrom(c)
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to resolve session for report")
			return fail(c, fiber.StatusInternalServerError, reportFailedMessage)
		}
		if session == nil {
			return fail(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
