package gemini

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/ai"
	"gitlab.com/home-server7795544/home-server/gateway/ask-relay/internal/tracing"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const providerName = "gemini"

func Open(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Gemini client")
	}
	return client, nil
}

func SendTextAndGetText(client *genai.Client, model string) ai.SendTextAndGetTextFunc {
	return func(ctx context.Context,
		logger *zap.Logger,
		prompt string,
	) (text string, err error) {
		ctx, span := tracing.StartProviderSpan(ctx, providerName, model, len(prompt))
		defer func() { tracing.EndSpan(span, err) }()

		contents := []*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  genai.RoleUser,
		}}
		logger.Debug("Gemini GenerateContent", zap.String("model", model))
		response, err := client.Models.GenerateContent(ctx, model, contents, nil)
		if err != nil {
			return "", errors.Wrap(err, "gemini generate content")
		}

		text = response.Text()
		if len(text) == 0 {
			return "", errors.WithStack(ai.ErrEmptyCompletion)
		}
		return text, nil
	}
}
