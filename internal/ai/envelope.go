package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// EnvelopeKind tags the root shape of a completion. It is informational only;
// the relay never rejects a completion because of its shape.
type EnvelopeKind string

const (
	KindReply    EnvelopeKind = "reply"
	KindPlan     EnvelopeKind = "plan"
	KindIntents  EnvelopeKind = "intents"
	KindOpaque   EnvelopeKind = "opaque"
	KindFallback EnvelopeKind = "fallback"
)

const fence = "```"

var openingFence = regexp.MustCompile("^```[A-Za-z0-9_+.-]*$")

type Envelope struct {
	Kind EnvelopeKind
	Body json.RawMessage
}

type replyEnvelope struct {
	Reply string `json:"reply"`
}

// StripFences removes a leading fence line (``` with an optional language tag)
// and a trailing ``` line. Text without fence lines is returned unchanged.
func StripFences(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	stripped := false

	if openingFence.MatchString(strings.TrimSpace(lines[0])) {
		lines = lines[1:]
		stripped = true
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == fence {
		lines = lines[:n-1]
		stripped = true
	}
	if !stripped {
		return text
	}
	return strings.Join(lines, "\n")
}

func ClassifyEnvelope(raw []byte) EnvelopeKind {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return KindOpaque
	}
	if _, ok := root["plan"]; ok {
		return KindPlan
	}
	if _, ok := root["intents"]; ok {
		return KindIntents
	}
	if _, ok := root["reply"]; ok {
		return KindReply
	}
	return KindOpaque
}

// Interpret turns a raw completion into the response body. Valid JSON is
// forwarded byte for byte. Anything else becomes {"reply": text}, unless strict
// is set, in which case ErrMalformedCompletion is returned.
func Interpret(completion string, strict bool) (Envelope, error) {
	normalized := StripFences(completion)
	raw := []byte(normalized)

	if json.Valid(raw) {
		return Envelope{Kind: ClassifyEnvelope(raw), Body: raw}, nil
	}
	if strict {
		return Envelope{}, errors.WithStack(ErrMalformedCompletion)
	}

	body, err := json.Marshal(replyEnvelope{Reply: normalized})
	if err != nil {
		return Envelope{}, errors.Wrap(err, "marshal reply envelope")
	}
	return Envelope{Kind: KindFallback, Body: body}, nil
}
