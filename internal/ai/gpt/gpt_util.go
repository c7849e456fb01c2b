package gpt

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/tracing"
	"go.uber.org/zap"
)

const providerName = "openai"

func Open(apiKey string, opts ...option.RequestOption) *openai.Client {
	return openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
}

func SendTextAndGetText(client *openai.Client, model string) ai.SendTextAndGetTextFunc {
	return func(ctx context.Context, logger *zap.Logger, prompt string) (text string, err error) {
		ctx, span := tracing.StartProviderSpan(ctx, providerName, model, len(prompt))
		defer func() { tracing.EndSpan(span, err) }()

		params := openai.ChatCompletionNewParams{
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			}),
			Model: openai.F(openai.ChatModel(model)),
		}

		logger.Debug("chat completion", zap.String("model", model))
		chatCompletion, err := client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", errors.Wrap(err, "openai chat completion")
		}
		if len(chatCompletion.Choices) == 0 || chatCompletion.Choices[0].Message.Content == "" {
			return "", errors.WithStack(ai.ErrEmptyCompletion)
		}

		return chatCompletion.Choices[0].Message.Content, nil
	}
}
