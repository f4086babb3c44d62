// Package adapters - types.go defines the normalized request/response contract.
//
// DESIGN: The gateway speaks one provider-agnostic shape to its callers.
// Adapters translate this shape to/from each Bedrock model family's native
// invoke payload. These types carry no vendor-specific fields.
package adapters

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a normalized conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is the provider-agnostic invocation request.
// Temperature and TopP are pointers so adapters can distinguish
// "unset" from an explicit zero.
type Request struct {
	Messages      []Message `json:"messages"`
	System        string    `json:"system,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	TopP          *float64  `json:"top_p,omitempty"`
	MaxTokens     int       `json:"max_tokens,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

// Usage reports token consumption as extracted from a vendor response.
// Families that don't report usage leave the zero value.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Result is the provider-agnostic invocation result.
// Embedding is set only by embedding-model families; Content only by
// text-generation families.
type Result struct {
	Content    string    `json:"content,omitempty"`
	StopReason string    `json:"stop_reason,omitempty"`
	Usage      Usage     `json:"usage"`
	Embedding  []float64 `json:"embedding,omitempty"`
}

// LastUserMessage returns the content of the most recent user turn,
// or "" if there is none.
func (r *Request) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i].Content
		}
	}
	return ""
}
