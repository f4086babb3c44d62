package adapters

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultClaudeMaxTokens is used when the caller doesn't set max_tokens;
// Bedrock rejects Anthropic invokes without it.
const DefaultClaudeMaxTokens = 1024

// bedrockAnthropicVersion is the fixed version tag Bedrock expects in the
// body instead of the anthropic-version header used by the direct API.
const bedrockAnthropicVersion = "bedrock-2023-05-31"

// ClaudeAdapter handles the Anthropic Messages protocol as spoken by
// Bedrock's anthropic.claude* models. All normalized sampling parameters
// map one-to-one, so nothing is dropped and nothing fails.
type ClaudeAdapter struct {
	BaseAdapter
}

// NewClaudeAdapter creates a new Claude adapter.
func NewClaudeAdapter() *ClaudeAdapter {
	return &ClaudeAdapter{
		BaseAdapter: BaseAdapter{family: "anthropic.claude"},
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
	System           string          `json:"system,omitempty"`
}

// BuildRequest converts a normalized request into an Anthropic Messages body.
// System turns (whether in Request.System or inline messages) are folded into
// the top-level system field; optional sampling parameters are attached only
// when the caller set them.
func (a *ClaudeAdapter) BuildRequest(req *Request) ([]byte, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultClaudeMaxTokens
	}

	system := req.System
	messages := make([]claudeMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		messages = append(messages, claudeMessage{Role: string(m.Role), Content: m.Content})
	}

	body, err := json.Marshal(claudeRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        maxTokens,
		Messages:         messages,
		System:           system,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode claude request: %w", err)
	}

	if req.Temperature != nil {
		if body, err = sjson.SetBytes(body, "temperature", *req.Temperature); err != nil {
			return nil, err
		}
	}
	if req.TopP != nil {
		if body, err = sjson.SetBytes(body, "top_p", *req.TopP); err != nil {
			return nil, err
		}
	}
	if len(req.StopSequences) > 0 {
		if body, err = sjson.SetBytes(body, "stop_sequences", req.StopSequences); err != nil {
			return nil, err
		}
	}

	return body, nil
}

// ParseResponse normalizes an Anthropic Messages response:
// {"content": [{"type": "text", "text": "..."}], "stop_reason": "end_turn",
// "usage": {"input_tokens": N, "output_tokens": N}}
func (a *ClaudeAdapter) ParseResponse(body []byte) (*Result, error) {
	content := gjson.GetBytes(body, "content")
	if !content.Exists() || !content.IsArray() {
		return nil, &MalformedResponseError{Family: a.Family(), Field: "content"}
	}

	var text string
	for _, block := range content.Array() {
		if block.Get("type").String() == "text" {
			text += block.Get("text").String()
		}
	}

	in := int(gjson.GetBytes(body, "usage.input_tokens").Int())
	out := int(gjson.GetBytes(body, "usage.output_tokens").Int())

	return &Result{
		Content:    text,
		StopReason: gjson.GetBytes(body, "stop_reason").String(),
		Usage: Usage{
			InputTokens:  in,
			OutputTokens: out,
			TotalTokens:  in + out,
		},
	}, nil
}

// Ensure ClaudeAdapter implements Adapter
var _ Adapter = (*ClaudeAdapter)(nil)
