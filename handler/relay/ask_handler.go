package relay

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/api"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/kafka"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/logz"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/metrics"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	MessageQueryRequired  = "Query is required."
	MessageSomethingWrong = "Something went wrong."
)

var validate = validator.New()

type Options struct {
	Provider   string
	Model      string
	PromptMode string
	StrictJSON bool
}

type Handler struct {
	opts        Options
	buildPrompt ai.BuildPromptFunc
	sendText    ai.SendTextAndGetTextFunc
	sendAudit   kafka.SendMessageSyncFunc
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// New wires the ask handler. sendAudit may be nil when audit publishing is
// disabled; logger may be nil to use the global logger.
func New(
	opts Options,
	buildPrompt ai.BuildPromptFunc,
	sendText ai.SendTextAndGetTextFunc,
	sendAudit kafka.SendMessageSyncFunc,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		opts:        opts,
		buildPrompt: buildPrompt,
		sendText:    sendText,
		sendAudit:   sendAudit,
		metrics:     m,
		logger:      logger,
	}
}

func (h *Handler) Ask() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		reqID := c.Get(api.HeaderRequestID)
		logger := logz.WithTrace(ctx, h.baseLogger(), reqID)

		var req ai.AskRequest
		if err := c.BodyParser(&req); err != nil {
			logger.Debug("unreadable ask body", zap.Error(err))
			return api.BadRequest(c, MessageQueryRequired)
		}
		if err := validate.Struct(req); err != nil {
			return api.BadRequest(c, MessageQueryRequired)
		}

		completion, err := h.sendText(ctx, logger, h.buildPrompt(req.Query))
		if err != nil {
			h.metrics.UpstreamErrors.WithLabelValues(h.opts.Provider, upstreamReason(err)).Inc()
			logger.Error("completion failed",
				zap.String("provider", h.opts.Provider),
				zap.String("model", h.opts.Model),
				zap.Error(err),
				zap.String("stacktrace", fmt.Sprintf("%+v", err)),
			)
			return api.InternalError(c, MessageSomethingWrong)
		}

		logger.Info("completion received",
			zap.String("provider", h.opts.Provider),
			zap.String("model", h.opts.Model),
			zap.String("completion", completion),
		)

		envelope, err := ai.Interpret(completion, h.opts.StrictJSON)
		if err != nil {
			h.metrics.UpstreamErrors.WithLabelValues(h.opts.Provider, "malformed").Inc()
			logger.Error("completion is not valid json",
				zap.Error(err),
				zap.String("stacktrace", fmt.Sprintf("%+v", err)),
				zap.String("completion", completion),
			)
			return api.InternalError(c, MessageSomethingWrong)
		}

		h.metrics.CompletionsTotal.WithLabelValues(h.opts.Provider, string(envelope.Kind)).Inc()
		if envelope.Kind == ai.KindFallback {
			logger.Warn("completion wrapped as reply")
		}
		h.audit(c, logger, reqID, envelope.Kind, completion)

		return api.OkRaw(c, envelope.Body)
	}
}

// audit publishes the completion record. Failures are logged and counted but
// never change the response.
func (h *Handler) audit(c *fiber.Ctx, logger *zap.Logger, reqID string, kind ai.EnvelopeKind, completion string) {
	if h.sendAudit == nil {
		return
	}
	record := ai.CompletionAudit{
		RequestId:  reqID,
		Provider:   h.opts.Provider,
		Model:      h.opts.Model,
		PromptMode: h.opts.PromptMode,
		Kind:       kind,
		Fallback:   kind == ai.KindFallback,
		Completion: completion,
		Date:       time.Now(),
	}
	if sc := trace.SpanContextFromContext(c.UserContext()); sc.IsValid() {
		record.TraceId = sc.TraceID().String()
	}
	if err := h.sendAudit(logger, reqID, record); err != nil {
		h.metrics.AuditFailures.Inc()
		logger.Warn("completion audit not published", zap.Error(err))
	}
}

func (h *Handler) baseLogger() *zap.Logger {
	if h.logger != nil {
		return h.logger
	}
	return logz.NewLogger()
}

func upstreamReason(err error) string {
	if errors.Is(err, ai.ErrEmptyCompletion) {
		return "empty"
	}
	return "call"
}
