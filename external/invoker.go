// Package external holds the Bedrock runtime collaborators the gateway
// invokes models through. Adapter resolution and transformation never touch
// the network; everything that does lives here behind the Invoker interface
// so handlers can be tested against a stub.
package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// invokeTimeout bounds a single model invocation end to end.
const invokeTimeout = 5 * time.Minute

// Invoker sends a vendor payload to a model endpoint and returns the raw
// vendor response body.
type Invoker interface {
	Invoke(ctx context.Context, modelID string, payload []byte) ([]byte, error)
}

// RuntimeInvoker invokes models through the Bedrock runtime REST surface:
// POST {endpoint}/model/{modelId}/invoke with a SigV4-signed request.
type RuntimeInvoker struct {
	endpoint string
	client   *http.Client
}

// NewRuntimeInvoker creates an invoker for the given region. A non-empty
// endpoint overrides the regional default and skips request signing (used
// for local stubs in integration tests).
func NewRuntimeInvoker(region, endpoint string) (*RuntimeInvoker, error) {
	if endpoint != "" {
		return &RuntimeInvoker{
			endpoint: endpoint,
			client:   &http.Client{Timeout: invokeTimeout},
		}, nil
	}

	transport, err := NewSigningTransport(region, nil)
	if err != nil {
		return nil, err
	}

	return &RuntimeInvoker{
		endpoint: fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", region),
		client:   &http.Client{Timeout: invokeTimeout, Transport: transport},
	}, nil
}

// Invoke posts the payload to the model's invoke endpoint and returns the
// response body. Non-2xx responses become errors carrying the status and a
// body snippet for diagnosis.
func (v *RuntimeInvoker) Invoke(ctx context.Context, modelID string, payload []byte) ([]byte, error) {
	invokeURL := fmt.Sprintf("%s/model/%s/invoke", v.endpoint, url.PathEscape(modelID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, invokeURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model %q: %w", modelID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoke response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, fmt.Errorf("model %q invoke returned status %d: %s", modelID, resp.StatusCode, snippet)
	}

	return body, nil
}

// Ensure RuntimeInvoker implements Invoker
var _ Invoker = (*RuntimeInvoker)(nil)
