package adapters

// MistralAdapter handles Bedrock's mistral.mi* instruction models. Mistral
// speaks the exact [INST]-tagged chat protocol of the Llama family, so this
// adapter overrides nothing: it delegates both transformations to a shared
// LlamaChatAdapter and exists purely to be routed under its own registry
// pattern. Payloads are byte-identical to the base adapter's.
type MistralAdapter struct {
	BaseAdapter
	base *LlamaChatAdapter
}

// NewMistralAdapter creates a new Mistral adapter.
func NewMistralAdapter() *MistralAdapter {
	return &MistralAdapter{
		BaseAdapter: BaseAdapter{family: "mistral"},
		base:        NewLlamaChatAdapter(),
	}
}

// BuildRequest delegates to the Llama chat protocol unchanged. Errors are
// reported under the mistral family.
func (a *MistralAdapter) BuildRequest(req *Request) ([]byte, error) {
	return a.base.buildRequest(a.Family(), req)
}

// ParseResponse delegates to the Llama chat protocol unchanged. Errors are
// reported under the mistral family.
func (a *MistralAdapter) ParseResponse(body []byte) (*Result, error) {
	return a.base.parseResponse(a.Family(), body)
}

// Ensure MistralAdapter implements Adapter
var _ Adapter = (*MistralAdapter)(nil)
