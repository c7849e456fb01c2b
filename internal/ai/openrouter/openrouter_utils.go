package openrouter

import (
	"context"

	"github.com/pkg/errors"
	"github.com/revrost/go-openrouter"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/tracing"
	"go.uber.org/zap"
)

const providerName = "openrouter"

func Open(apiKey string) *openrouter.Client {
	return openrouter.NewClient(apiKey)
}

func SendTextAndGetText(client *openrouter.Client, model string) ai.SendTextAndGetTextFunc {
	return func(ctx context.Context, logger *zap.Logger, prompt string) (text string, err error) {
		ctx, span := tracing.StartProviderSpan(ctx, providerName, model, len(prompt))
		defer func() { tracing.EndSpan(span, err) }()

		resp, err := client.CreateChatCompletion(
			ctx,
			openrouter.ChatCompletionRequest{
				Model: model,
				Messages: []openrouter.ChatCompletionMessage{{
					Role:    openrouter.ChatMessageRoleUser,
					Content: openrouter.Content{Text: prompt},
				}},
			},
		)
		if err != nil {
			return "", errors.Wrap(err, "openrouter chat completion")
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content.Text == "" {
			logger.Debug("openrouter returned no choices", zap.String("model", model))
			return "", errors.WithStack(ai.ErrEmptyCompletion)
		}
		return resp.Choices[0].Message.Content.Text, nil
	}
}
