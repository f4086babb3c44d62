package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// CLAUDE BUILD REQUEST
// =============================================================================

func TestClaude_BuildRequest_Basic(t *testing.T) {
	adapter := NewClaudeAdapter()

	body, err := adapter.BuildRequest(&Request{
		Messages: []Message{
			{Role: RoleUser, Content: "Hello"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, bedrockAnthropicVersion, gjson.GetBytes(body, "anthropic_version").String())
	assert.Equal(t, int64(DefaultClaudeMaxTokens), gjson.GetBytes(body, "max_tokens").Int())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
	assert.Equal(t, "Hello", gjson.GetBytes(body, "messages.0.content").String())

	// Optional sampling parameters stay absent when unset.
	assert.False(t, gjson.GetBytes(body, "temperature").Exists())
	assert.False(t, gjson.GetBytes(body, "top_p").Exists())
	assert.False(t, gjson.GetBytes(body, "stop_sequences").Exists())
}

func TestClaude_BuildRequest_AllParameters(t *testing.T) {
	adapter := NewClaudeAdapter()

	body, err := adapter.BuildRequest(&Request{
		Messages: []Message{
			{Role: RoleUser, Content: "What is the weather?"},
			{Role: RoleAssistant, Content: "Where?"},
			{Role: RoleUser, Content: "San Francisco"},
		},
		System:        "You are a weather bot.",
		Temperature:   floatPtr(0.2),
		TopP:          floatPtr(0.9),
		MaxTokens:     512,
		StopSequences: []string{"\n\nHuman:"},
	})

	require.NoError(t, err)
	assert.Equal(t, "You are a weather bot.", gjson.GetBytes(body, "system").String())
	assert.Equal(t, int64(512), gjson.GetBytes(body, "max_tokens").Int())
	assert.Equal(t, 0.2, gjson.GetBytes(body, "temperature").Float())
	assert.Equal(t, 0.9, gjson.GetBytes(body, "top_p").Float())
	assert.Equal(t, "\n\nHuman:", gjson.GetBytes(body, "stop_sequences.0").String())
	assert.Equal(t, int64(3), gjson.GetBytes(body, "messages.#").Int())
}

func TestClaude_BuildRequest_FoldsSystemTurns(t *testing.T) {
	adapter := NewClaudeAdapter()

	body, err := adapter.BuildRequest(&Request{
		System: "Base instructions.",
		Messages: []Message{
			{Role: RoleSystem, Content: "Extra instructions."},
			{Role: RoleUser, Content: "Hi"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "Base instructions.\nExtra instructions.", gjson.GetBytes(body, "system").String())
	// System turns never appear in the messages array.
	assert.Equal(t, int64(1), gjson.GetBytes(body, "messages.#").Int())
	assert.Equal(t, "user", gjson.GetBytes(body, "messages.0.role").String())
}

// =============================================================================
// CLAUDE PARSE RESPONSE
// =============================================================================

func TestClaude_ParseResponse(t *testing.T) {
	adapter := NewClaudeAdapter()

	result, err := adapter.ParseResponse([]byte(`{
		"id": "msg_01XAbc",
		"type": "message",
		"role": "assistant",
		"content": [{"type": "text", "text": "Hello"}, {"type": "text", "text": " world"}],
		"model": "anthropic.claude-3-5-sonnet-20241022-v2:0",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 150, "output_tokens": 25}
	}`))

	require.NoError(t, err)
	assert.Equal(t, "Hello world", result.Content)
	assert.Equal(t, "end_turn", result.StopReason)
	assert.Equal(t, 150, result.Usage.InputTokens)
	assert.Equal(t, 25, result.Usage.OutputTokens)
	assert.Equal(t, 175, result.Usage.TotalTokens)
}

func TestClaude_ParseResponse_MissingContent(t *testing.T) {
	adapter := NewClaudeAdapter()

	_, err := adapter.ParseResponse([]byte(`{"stop_reason": "end_turn"}`))

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "content", malformed.Field)
	assert.Equal(t, "anthropic.claude", malformed.Family)
}

func TestClaude_ParseResponse_ContentNotArray(t *testing.T) {
	adapter := NewClaudeAdapter()

	_, err := adapter.ParseResponse([]byte(`{"content": "plain string"}`))

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "content", malformed.Field)
}

// Fixture round trip: a synthetic vendor response constructed from a known
// normalized output must parse back to that output.
func TestClaude_ParseResponse_FixtureRoundTrip(t *testing.T) {
	adapter := NewClaudeAdapter()

	want := &Result{
		Content:    "It is sunny in San Francisco.",
		StopReason: "end_turn",
		Usage:      Usage{InputTokens: 42, OutputTokens: 9, TotalTokens: 51},
	}

	vendorResponse := []byte(`{
		"content": [{"type": "text", "text": "It is sunny in San Francisco."}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 42, "output_tokens": 9}
	}`)

	got, err := adapter.ParseResponse(vendorResponse)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
