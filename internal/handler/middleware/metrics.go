package middleware

import (
	"strconv"
	"time"

	"github.com/andressep95/propertyhub/pkg/metrics"
	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request counts and latency labelled by route pattern.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}
		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		metrics.HTTPRequestTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
