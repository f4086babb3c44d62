// Package adapters translates between the gateway's normalized contract and
// the native invoke payloads of AWS Bedrock model families.
//
// DESIGN: Each distinct wire protocol gets one base adapter. Sibling model
// families that speak an identical protocol (e.g. Mistral reusing the Llama
// chat format) are thin types that delegate both operations to the shared
// base, existing only to be routed under their own registry pattern.
//
// FLOW:
//  1. Handler resolves the model ID through the Registry
//  2. Handler calls BuildRequest to get the vendor payload
//  3. Handler invokes the model over the Bedrock runtime transport
//  4. Handler calls ParseResponse to normalize the vendor response
//
// To add a new family: implement Adapter and bind a pattern for it in
// NewDefaultRegistry. Register specific patterns before general ones.
package adapters

// Adapter is the transformation contract for one model family.
// Both operations are pure and single-shot; adapters hold no per-call
// state and are safe to share across concurrent requests.
type Adapter interface {
	// Family returns the family identifier (e.g. "anthropic.claude").
	Family() string

	// BuildRequest converts a normalized request into the family's native
	// invoke payload. Returns UnsupportedParameterError if the request uses
	// a feature the family's protocol cannot express.
	BuildRequest(req *Request) ([]byte, error)

	// ParseResponse converts a native invoke response into a normalized
	// result. Returns MalformedResponseError if a required field is absent.
	ParseResponse(body []byte) (*Result, error)
}

// BaseAdapter provides the family name shared by all adapters.
type BaseAdapter struct {
	family string
}

// Family returns the family identifier.
func (a *BaseAdapter) Family() string { return a.family }
