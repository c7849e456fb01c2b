package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// fasthttp header carrier for Extract
type reqCarrier struct{ h *fasthttp.RequestHeader }

func (c reqCarrier) Get(key string) string { return string(c.h.Peek(key)) }
func (c reqCarrier) Set(key, val string)   { c.h.Set(key, val) }
func (c reqCarrier) Keys() []string {
	keys := make([]string, 0, c.h.Len())
	c.h.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

// OTelFiberMiddleware starts a server span per request and stores the span
// context in c.UserContext() for downstream handlers.
func OTelFiberMiddleware(serviceName string) fiber.Handler {
	tr := otel.Tracer(serviceName)

	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), reqCarrier{h: &c.Context().Request.Header})

		ctx, span := tr.Start(ctx, spanNameFormatterFiber(c), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.SetUserContext(ctx)

		span.SetAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("http.method", c.Method()),
			attribute.String("http.target", c.OriginalURL()),
			attribute.String("http.scheme", c.Protocol()),
			attribute.String("net.peer.ip", c.IP()),
			attribute.String("user_agent", c.Get(fiber.HeaderUserAgent)),
			attribute.String("request.id", c.Get(api.HeaderRequestID)),
		)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(
			attribute.String("http.route", c.Route().Path),
			attribute.Int("http.status_code", status),
		)

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case status >= 500:
			span.SetStatus(codes.Error, "server_error")
		case status >= 400:
			span.SetStatus(codes.Error, "client_error")
		default:
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}

func spanNameFormatterFiber(c *fiber.Ctx) string {
	method := strings.ToUpper(c.Method())
	path := c.Route().Path
	if path == "" || path == "/" {
		path = c.Path()
	}
	return method + " " + path
}
