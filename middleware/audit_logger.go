package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/api"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/logz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AuditLogger logs one line when a request arrives and one when it completes.
// Bodies are never logged here; the relay handler logs completions itself.
func AuditLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		ctx := c.UserContext()
		reqID := c.Get(api.HeaderRequestID)
		logger := logz.WithTrace(ctx, logz.NewLogger(), reqID)

		span := trace.SpanFromContext(ctx)
		reqBytes := len(c.Body())
		span.AddEvent("http.request", trace.WithAttributes(
			attribute.String("request.id", reqID),
			attribute.Int("body.bytes", reqBytes),
		))

		logger.Info("http_request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("req_body_bytes", reqBytes),
		)

		err := c.Next()

		status := c.Response().StatusCode()
		resBytes := len(c.Response().Body())
		durationMs := time.Since(start).Milliseconds()

		span.AddEvent("http.response", trace.WithAttributes(
			attribute.Int("status", status),
			attribute.Int64("duration_ms", durationMs),
			attribute.Int("body.bytes", resBytes),
		))

		logger.Info("http_response",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Int64("duration_ms", durationMs),
			zap.Int("res_body_bytes", resBytes),
		)

		return err
	}
}
