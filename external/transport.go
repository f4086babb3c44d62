// SigV4 signing transport for Bedrock runtime calls.
//
// Provides an http.RoundTripper that signs outbound requests for the
// bedrock service using the standard AWS credential chain. The invoker
// stacks it under its HTTP client so invocation code never touches
// credentials.
package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// SigningTransport is an http.RoundTripper that signs requests with AWS SigV4.
type SigningTransport struct {
	credentials aws.CredentialsProvider
	region      string
	signer      *v4.Signer
	base        http.RoundTripper
}

// NewSigningTransport creates a transport that signs requests for the
// bedrock service in the given region. Credentials come from the standard
// AWS credential chain. A nil base uses http.DefaultTransport.
func NewSigningTransport(region string, base http.RoundTripper) (*SigningTransport, error) {
	if region == "" {
		region = "us-east-1"
	}
	if base == nil {
		base = http.DefaultTransport
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Fail at startup, not on the first request, if no credentials resolve.
	if _, err := cfg.Credentials.Retrieve(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	return &SigningTransport{
		credentials: cfg.Credentials,
		region:      region,
		signer:      v4.NewSigner(),
		base:        base,
	}, nil
}

// RoundTrip implements http.RoundTripper. It signs the request with SigV4
// before delegating to the base transport.
func (t *SigningTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body for signing: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	creds, err := t.credentials.Retrieve(req.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve AWS credentials: %w", err)
	}

	payloadHash := fmt.Sprintf("%x", sha256.Sum256(body))
	err = t.signer.SignHTTP(req.Context(), creds, req, payloadHash, "bedrock", t.region, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to sign Bedrock request: %w", err)
	}

	// Reset body reader after signing
	req.Body = io.NopCloser(bytes.NewReader(body))

	return t.base.RoundTrip(req)
}
