package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderRequestID = "requestId"
	HeaderTraceID   = "traceId"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func Ok(c *fiber.Ctx, data interface{}) error {
	return c.Status(http.StatusOK).JSON(data)
}

// OkRaw writes an already encoded JSON document without re-marshalling it.
func OkRaw(c *fiber.Ctx, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(http.StatusOK).Send(body)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: message})
}

func InternalError(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: message})
}
