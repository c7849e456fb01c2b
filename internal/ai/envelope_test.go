package ai

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "json fence", input: "```json\n{\"reply\":\"hi\"}\n```", expected: `{"reply":"hi"}`},
		{name: "bare fence", input: "```\n{\"reply\":\"hi\"}\n```", expected: `{"reply":"hi"}`},
		{name: "upper case tag", input: "```JSON\n{\"a\":1}\n```", expected: `{"a":1}`},
		{name: "surrounding whitespace", input: "\n  ```json  \n{\"a\":1}\n```\n\n", expected: `{"a":1}`},
		{name: "crlf", input: "```json\r\n{\"a\":1}\r\n```\r\n", expected: "{\"a\":1}\r"},
		{name: "opening only", input: "```json\n{\"a\":1}", expected: `{"a":1}`},
		{name: "closing only", input: "{\"a\":1}\n```", expected: `{"a":1}`},
		{name: "multi line body kept", input: "```json\n{\n  \"plan\": []\n}\n```", expected: "{\n  \"plan\": []\n}"},
		{name: "no fence unchanged", input: `{"reply":"hi"}`, expected: `{"reply":"hi"}`},
		{name: "plain text unchanged", input: "Sure, the weather is sunny.\n", expected: "Sure, the weather is sunny.\n"},
		{name: "inline backticks untouched", input: "use ```code``` here", expected: "use ```code``` here"},
		{name: "fence with prose tag is not a fence", input: "```json please\n{}\n```", expected: "```json please\n{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}

func TestStripFencesIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"reply\":\"hi\"}\n```",
		`{"plan":[{"action":"BACK"}]}`,
		"Sure, the weather is sunny.",
		"```\nplain\n```",
	}
	for _, in := range inputs {
		once := StripFences(in)
		assert.Equal(t, once, StripFences(once), in)
	}
}

func TestClassifyEnvelope(t *testing.T) {
	tests := []struct {
		raw      string
		expected EnvelopeKind
	}{
		{raw: `{"reply":"hi"}`, expected: KindReply},
		{raw: `{"plan":[]}`, expected: KindPlan},
		{raw: `{"intents":[]}`, expected: KindIntents},
		{raw: `{"other":1}`, expected: KindOpaque},
		{raw: `[1,2]`, expected: KindOpaque},
		{raw: `"text"`, expected: KindOpaque},
		{raw: `{"reply":"x","plan":[]}`, expected: KindPlan},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyEnvelope([]byte(tt.raw)))
		})
	}
}

func TestInterpret(t *testing.T) {
	t.Run("valid json forwarded verbatim", func(t *testing.T) {
		env, err := Interpret("```json\n{\"plan\":[{\"action\":\"SET_VOLUME\",\"value\":0.75}]}\n```", false)
		require.NoError(t, err)
		assert.Equal(t, KindPlan, env.Kind)
		assert.Equal(t, `{"plan":[{"action":"SET_VOLUME","value":0.75}]}`, string(env.Body))
	})

	t.Run("plain text wrapped", func(t *testing.T) {
		env, err := Interpret("Sure, the weather is sunny.", false)
		require.NoError(t, err)
		assert.Equal(t, KindFallback, env.Kind)
		assert.Equal(t, `{"reply":"Sure, the weather is sunny."}`, string(env.Body))
	})

	t.Run("wrapped text is the normalized text", func(t *testing.T) {
		env, err := Interpret("```\nnot {json}\n```", false)
		require.NoError(t, err)
		assert.JSONEq(t, `{"reply":"not {json}"}`, string(env.Body))
	})

	t.Run("strict rejects plain text", func(t *testing.T) {
		_, err := Interpret("Sure, the weather is sunny.", true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedCompletion))
	})

	t.Run("strict accepts json", func(t *testing.T) {
		env, err := Interpret(`{"reply":"ok"}`, true)
		require.NoError(t, err)
		assert.Equal(t, KindReply, env.Kind)
	})
}
