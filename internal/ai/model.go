package ai

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type AskRequest struct {
	Query string `json:"query" validate:"required"`
}

// SendTextAndGetTextFunc sends one prompt to a completion provider and returns
// the raw completion text.
type SendTextAndGetTextFunc func(ctx context.Context, logger *zap.Logger, prompt string) (string, error)

var (
	ErrEmptyCompletion     = errors.New("empty completion from provider")
	ErrMalformedCompletion = errors.New("completion is not valid json")
	ErrMissingPlaceholder  = errors.New("prompt template has no " + UserQueryPlaceholder + " placeholder")
)

type CompletionAudit struct {
	RequestId  string       `json:"requestId"`
	TraceId    string       `json:"traceId,omitempty"`
	Provider   string       `json:"provider"`
	Model      string       `json:"model"`
	PromptMode string       `json:"promptMode"`
	Kind       EnvelopeKind `json:"kind"`
	Fallback   bool         `json:"fallback"`
	Completion string       `json:"completion"`
	Date       time.Time    `json:"date"`
}
