package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/api"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSetHeaderID(t *testing.T) {
	app := fiber.New()
	app.Use(SetHeaderID())
	app.Get("/echo", func(c *fiber.Ctx) error {
		return c.SendString(c.Get(api.HeaderRequestID) + "|" + c.Get(api.HeaderTraceID))
	})

	t.Run("generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/echo", nil))
		require.NoError(t, err)

		reqID := resp.Header.Get(api.HeaderRequestID)
		_, err = uuid.Parse(reqID)
		assert.NoError(t, err)
	})

	t.Run("caller supplied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.Header.Set(api.HeaderRequestID, "abc")
		req.Header.Set(api.HeaderTraceID, "trace-1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "abc", resp.Header.Get(api.HeaderRequestID))
	})
}

func TestPrometheusMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	app := fiber.New()
	app.Use(PrometheusMetrics(m))
	app.Post("/ask", func(c *fiber.Ctx) error {
		return api.BadRequest(c, "Query is required.")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return api.Ok(c, fiber.Map{"status": "ok"})
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ask", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/ask", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/health", "200")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveRequests))
}

func TestOTelFiberMiddlewareRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	app := fiber.New()
	app.Use(OTelFiberMiddleware("ask-relay"))
	app.Post("/ask", func(c *fiber.Ctx) error {
		if !trace.SpanContextFromContext(c.UserContext()).IsValid() {
			return c.SendStatus(http.StatusTeapot)
		}
		return api.InternalError(c, "Something went wrong.")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ask", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "POST /ask", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
