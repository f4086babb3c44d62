package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// LlamaChatAdapter handles the [INST]-tagged chat protocol spoken by
// Bedrock's meta.llama* instruction models. The same protocol is reused
// verbatim by MistralAdapter.
//
// The native protocol has no stop-sequence support, so a request carrying
// stop sequences fails loudly with UnsupportedParameterError rather than
// dropping them silently.
type LlamaChatAdapter struct {
	BaseAdapter
}

// NewLlamaChatAdapter creates a new Llama chat adapter.
func NewLlamaChatAdapter() *LlamaChatAdapter {
	return &LlamaChatAdapter{
		BaseAdapter: BaseAdapter{family: "meta.llama"},
	}
}

type llamaRequest struct {
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxGenLen   int      `json:"max_gen_len,omitempty"`
}

// BuildRequest renders the conversation into a single [INST]-tagged prompt:
//
//	<s>[INST] <<SYS>>\nsystem\n<</SYS>>\n\nuser [/INST] assistant </s><s>[INST] user [/INST]
func (a *LlamaChatAdapter) BuildRequest(req *Request) ([]byte, error) {
	return a.buildRequest(a.Family(), req)
}

// buildRequest carries the reporting family separately so delegating
// adapters surface errors under their own family, not "meta.llama".
func (a *LlamaChatAdapter) buildRequest(family string, req *Request) ([]byte, error) {
	if len(req.StopSequences) > 0 {
		return nil, &UnsupportedParameterError{Family: family, Parameter: "stop_sequences"}
	}

	body, err := json.Marshal(llamaRequest{
		Prompt:      renderInstPrompt(req),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxGenLen:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode llama request: %w", err)
	}
	return body, nil
}

// renderInstPrompt builds the [INST] prompt template. System content
// (Request.System plus any inline system turns) is wrapped in <<SYS>> tags
// inside the first instruction block. Consecutive user turns are joined
// with newlines into a single instruction block, since the template has
// no way to express back-to-back instructions.
func renderInstPrompt(req *Request) string {
	system := req.System
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += m.Content
		}
	}

	var sb strings.Builder
	var pending []string
	first := true
	flush := func() {
		if len(pending) == 0 {
			return
		}
		sb.WriteString("<s>[INST] ")
		if first && system != "" {
			sb.WriteString("<<SYS>>\n")
			sb.WriteString(system)
			sb.WriteString("\n<</SYS>>\n\n")
		}
		first = false
		sb.WriteString(strings.Join(pending, "\n"))
		sb.WriteString(" [/INST]")
		pending = pending[:0]
	}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleUser:
			// Consecutive user turns merge into one instruction block.
			pending = append(pending, m.Content)
		case RoleAssistant:
			// An assistant turn only closes an open instruction block.
			if len(pending) == 0 {
				continue
			}
			flush()
			sb.WriteString(" ")
			sb.WriteString(m.Content)
			sb.WriteString(" </s>")
		}
	}
	flush()
	return sb.String()
}

// ParseResponse normalizes a Llama invoke response:
// {"generation": "...", "prompt_token_count": N, "generation_token_count": N,
// "stop_reason": "stop"}
func (a *LlamaChatAdapter) ParseResponse(body []byte) (*Result, error) {
	return a.parseResponse(a.Family(), body)
}

func (a *LlamaChatAdapter) parseResponse(family string, body []byte) (*Result, error) {
	generation := gjson.GetBytes(body, "generation")
	if !generation.Exists() {
		return nil, &MalformedResponseError{Family: family, Field: "generation"}
	}

	in := int(gjson.GetBytes(body, "prompt_token_count").Int())
	out := int(gjson.GetBytes(body, "generation_token_count").Int())

	return &Result{
		Content:    strings.TrimSpace(generation.String()),
		StopReason: gjson.GetBytes(body, "stop_reason").String(),
		Usage: Usage{
			InputTokens:  in,
			OutputTokens: out,
			TotalTokens:  in + out,
		},
	}, nil
}

// Ensure LlamaChatAdapter implements Adapter
var _ Adapter = (*LlamaChatAdapter)(nil)
