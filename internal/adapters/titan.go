package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// TitanTextAdapter handles Bedrock's amazon.titan* text-generation models.
// Titan takes a flat "User:"/"Bot:" transcript rather than structured
// messages, and nests sampling parameters under textGenerationConfig.
type TitanTextAdapter struct {
	BaseAdapter
}

// NewTitanTextAdapter creates a new Titan text adapter.
func NewTitanTextAdapter() *TitanTextAdapter {
	return &TitanTextAdapter{
		BaseAdapter: BaseAdapter{family: "amazon.titan"},
	}
}

type titanGenerationConfig struct {
	Temperature   *float64 `json:"temperature,omitempty"`
	TopP          *float64 `json:"topP,omitempty"`
	MaxTokenCount int      `json:"maxTokenCount,omitempty"`
	StopSequences []string `json:"stopSequences,omitempty"`
}

type titanRequest struct {
	InputText            string                `json:"inputText"`
	TextGenerationConfig titanGenerationConfig `json:"textGenerationConfig"`
}

// BuildRequest renders the conversation as a "User:"/"Bot:" transcript
// ending with an open "Bot:" turn for the model to complete.
func (a *TitanTextAdapter) BuildRequest(req *Request) ([]byte, error) {
	body, err := json.Marshal(titanRequest{
		InputText: renderTitanTranscript(req),
		TextGenerationConfig: titanGenerationConfig{
			Temperature:   req.Temperature,
			TopP:          req.TopP,
			MaxTokenCount: req.MaxTokens,
			StopSequences: req.StopSequences,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode titan request: %w", err)
	}
	return body, nil
}

func renderTitanTranscript(req *Request) string {
	var sb strings.Builder
	if req.System != "" {
		sb.WriteString(req.System)
		sb.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			sb.WriteString(m.Content)
			sb.WriteString("\n\n")
		case RoleUser:
			sb.WriteString("User: ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		case RoleAssistant:
			sb.WriteString("Bot: ")
			sb.WriteString(m.Content)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("Bot:")
	return sb.String()
}

// ParseResponse normalizes a Titan text response:
// {"inputTextTokenCount": N, "results": [{"tokenCount": N,
// "outputText": "...", "completionReason": "FINISH"}]}
func (a *TitanTextAdapter) ParseResponse(body []byte) (*Result, error) {
	results := gjson.GetBytes(body, "results")
	if !results.Exists() || !results.IsArray() || len(results.Array()) == 0 {
		return nil, &MalformedResponseError{Family: a.Family(), Field: "results"}
	}

	first := results.Array()[0]
	output := first.Get("outputText")
	if !output.Exists() {
		return nil, &MalformedResponseError{Family: a.Family(), Field: "results.0.outputText"}
	}

	in := int(gjson.GetBytes(body, "inputTextTokenCount").Int())
	out := int(first.Get("tokenCount").Int())

	return &Result{
		Content:    strings.TrimSpace(output.String()),
		StopReason: first.Get("completionReason").String(),
		Usage: Usage{
			InputTokens:  in,
			OutputTokens: out,
			TotalTokens:  in + out,
		},
	}, nil
}

// Ensure TitanTextAdapter implements Adapter
var _ Adapter = (*TitanTextAdapter)(nil)

// TitanEmbeddingsAdapter handles Bedrock's amazon.titan-embed* models.
// Its pattern MUST be registered before the general amazon.titan pattern
// or the text adapter would shadow it.
//
// Embedding models have no sampling surface: temperature, top_p and stop
// sequences fail loudly. MaxTokens is ignored (the model embeds whatever
// fits its input window).
type TitanEmbeddingsAdapter struct {
	BaseAdapter
}

// NewTitanEmbeddingsAdapter creates a new Titan embeddings adapter.
func NewTitanEmbeddingsAdapter() *TitanEmbeddingsAdapter {
	return &TitanEmbeddingsAdapter{
		BaseAdapter: BaseAdapter{family: "amazon.titan-embed"},
	}
}

type titanEmbedRequest struct {
	InputText string `json:"inputText"`
}

// BuildRequest embeds the most recent user turn.
func (a *TitanEmbeddingsAdapter) BuildRequest(req *Request) ([]byte, error) {
	switch {
	case req.Temperature != nil:
		return nil, &UnsupportedParameterError{Family: a.Family(), Parameter: "temperature"}
	case req.TopP != nil:
		return nil, &UnsupportedParameterError{Family: a.Family(), Parameter: "top_p"}
	case len(req.StopSequences) > 0:
		return nil, &UnsupportedParameterError{Family: a.Family(), Parameter: "stop_sequences"}
	}

	body, err := json.Marshal(titanEmbedRequest{InputText: req.LastUserMessage()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode titan embeddings request: %w", err)
	}
	return body, nil
}

// ParseResponse normalizes a Titan embeddings response:
// {"embedding": [0.1, ...], "inputTextTokenCount": N}
func (a *TitanEmbeddingsAdapter) ParseResponse(body []byte) (*Result, error) {
	embedding := gjson.GetBytes(body, "embedding")
	if !embedding.Exists() || !embedding.IsArray() {
		return nil, &MalformedResponseError{Family: a.Family(), Field: "embedding"}
	}

	values := embedding.Array()
	vector := make([]float64, len(values))
	for i, v := range values {
		vector[i] = v.Float()
	}

	in := int(gjson.GetBytes(body, "inputTextTokenCount").Int())
	return &Result{
		Embedding: vector,
		Usage:     Usage{InputTokens: in, TotalTokens: in},
	}, nil
}

// Ensure TitanEmbeddingsAdapter implements Adapter
var _ Adapter = (*TitanEmbeddingsAdapter)(nil)
