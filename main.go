package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/api"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/config"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/handler/relay"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai/gemini"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai/gpt"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai/openrouter"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/kafka"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/logz"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/metrics"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/scramkafka"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/tracing"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/middleware"
	"go.uber.org/zap"
)

func main() {
	versionDeploy := time.Now().Unix()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatal(errors.New("unable to initial config: " + err.Error()))
	}

	logz.Init(cfg.LogConfig.Level, cfg.Server.Name)
	defer logz.Drop()

	logger := zap.L()
	logger.Info("version " + strconv.FormatInt(versionDeploy, 10))

	shutdown, err := tracing.Init(ctx, *cfg)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}
	defer func() { _ = shutdown(context.Background()) }()
	logger.Info("Otel initialised", zap.String("endpoint", cfg.OtelConfig.Endpoint))

	sendText, err := openProvider(ctx, *cfg)
	if err != nil {
		logger.Fatal("open provider", zap.String("provider", cfg.Provider), zap.Error(err))
	}
	logger.Info("provider ready", zap.String("provider", cfg.Provider), zap.String("model", cfg.Relay.Model))

	buildPrompt, err := ai.NewPromptBuilder(cfg.Relay)
	if err != nil {
		logger.Fatal("prompt builder", zap.Error(err))
	}

	var sendAudit kafka.SendMessageSyncFunc
	if cfg.KafkaConfig.Enable {
		kafkaProducer, err := scramkafka.NewSyncProducer(cfg.KafkaConfig)
		if err != nil {
			logger.Fatal("Fail Create NewSyncProducer", zap.Error(err))
		}
		defer func() {
			if err := kafkaProducer.Close(); err != nil {
				logger.Error("Fail Close SyncProducer", zap.Error(err))
			}
		}()
		sendAudit = kafka.NewSyncSendMessage(kafkaProducer, cfg.KafkaConfig.Topic.CompletionTopic)
		logger.Info("Kafka SyncProducer Connected !!")
	}

	m := metrics.NewMetrics()
	app := initFiber(*cfg, m)

	app.Get("/health", func(c *fiber.Ctx) error {
		return api.Ok(c, fiber.Map{
			"status":  "ok",
			"version": versionDeploy,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	askHandler := relay.New(
		relay.Options{
			Provider:   cfg.Provider,
			Model:      cfg.Relay.Model,
			PromptMode: cfg.Relay.PromptMode,
			StrictJSON: cfg.Relay.StrictJSON,
		},
		buildPrompt,
		sendText,
		sendAudit,
		m,
		nil,
	)
	app.Post("/ask", askHandler.Ask())

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info(fmt.Sprintf("Server running on port %s", cfg.Server.Port))
	if err = app.Listen(fmt.Sprintf(":%v", cfg.Server.Port)); err != nil {
		logger.Error(err.Error())
	}
}

func openProvider(ctx context.Context, cfg config.Config) (ai.SendTextAndGetTextFunc, error) {
	switch cfg.Provider {
	case config.ProviderGpt:
		return gpt.SendTextAndGetText(gpt.Open(cfg.OpenAiConfig.ApiKey), cfg.Relay.Model), nil
	case config.ProviderOpenRouter:
		return openrouter.SendTextAndGetText(openrouter.Open(cfg.OpenRouterConfig.ApiKey), cfg.Relay.Model), nil
	default:
		client, err := gemini.Open(ctx, cfg.GeminiConfig.ApiKey)
		if err != nil {
			return nil, err
		}
		return gemini.SendTextAndGetText(client, cfg.Relay.Model), nil
	}
}

func initFiber(cfg config.Config, m *metrics.Metrics) *fiber.App {
	app := fiber.New(
		fiber.Config{
			ReadTimeout:           cfg.HTTP.ReadTimeout,
			WriteTimeout:          cfg.HTTP.WriteTimeout,
			IdleTimeout:           cfg.HTTP.IdleTimeout,
			DisableStartupMessage: true,
			CaseSensitive:         true,
			StrictRouting:         true,
		},
	)
	app.Use(cors.New(cors.ConfigDefault))
	app.Use(middleware.SetHeaderID())
	app.Use(middleware.OTelFiberMiddleware(cfg.Server.Name))
	app.Use(middleware.PrometheusMetrics(m))
	app.Use(middleware.AuditLogger())
	return app
}
