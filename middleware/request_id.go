package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/api"
)

// SetHeaderID makes sure every request carries a requestId. Callers may send
// their own; otherwise one is generated. The id is echoed on the response.
func SetHeaderID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqId := c.Get(api.HeaderRequestID)
		if reqId == "" {
			reqId = uuid.New().String()
			c.Request().Header.Set(api.HeaderRequestID, reqId)
		}
		traceId := c.Get(api.HeaderTraceID)
		if traceId == "" {
			c.Request().Header.Set(api.HeaderTraceID, reqId)
		}
		c.Set(api.HeaderRequestID, reqId)
		return c.Next()
	}
}
