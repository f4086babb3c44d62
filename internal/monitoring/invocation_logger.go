// Package monitoring - invocation_logger.go logs the model invocation
// lifecycle.
//
// DESIGN: Structured logging at DEBUG level for each stage:
//   - LogResolved:   model ID matched to an adapter family
//   - LogOutgoing:   vendor payload built, about to invoke
//   - LogCompleted:  vendor response parsed, usage extracted
//
// Vendor payloads only report token usage after the call returns, so
// LogOutgoing carries a tokenizer-based estimate for request-side visibility.
package monitoring

import (
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/modelbridge/gateway/internal/adapters"
)

// InvocationLogger logs model invocation lifecycle events. A disabled
// logger turns every Log* call into a no-op.
type InvocationLogger struct {
	logger  *Logger
	enc     *tiktoken.Tiktoken
	enabled bool
}

// NewInvocationLogger creates a new invocation logger, honoring the
// monitoring.invocation_log config toggle. The token estimator is
// best-effort: if the encoding can't be loaded, estimates fall back to a
// bytes/4 heuristic. A disabled logger skips loading the encoding entirely.
func NewInvocationLogger(logger *Logger, enabled bool) *InvocationLogger {
	if !enabled {
		return &InvocationLogger{logger: logger}
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn().Err(err).Msg("token estimator unavailable, using byte heuristic")
		enc = nil
	}
	return &InvocationLogger{logger: logger, enc: enc, enabled: true}
}

// Enabled reports whether lifecycle events are being emitted.
func (il *InvocationLogger) Enabled() bool { return il.enabled }

// EstimateTokens approximates the prompt token count of a normalized request.
// The estimate is for observability only; billing-grade counts come from the
// vendor response.
func (il *InvocationLogger) EstimateTokens(req *adapters.Request) int {
	var text string
	if req.System != "" {
		text = req.System + "\n"
	}
	for _, m := range req.Messages {
		text += m.Content + "\n"
	}

	if il.enc == nil {
		return len(text) / 4
	}
	return len(il.enc.Encode(text, nil, nil))
}

// LogResolved logs a successful registry resolution.
func (il *InvocationLogger) LogResolved(requestID, model, family string) {
	if !il.enabled {
		return
	}
	il.logger.Debug().
		Str("request_id", requestID).
		Str("model", model).
		Str("family", family).
		Msg("resolved")
}

// OutgoingInfo describes a built vendor payload about to be invoked.
type OutgoingInfo struct {
	RequestID       string
	Model           string
	Family          string
	PayloadBytes    int
	EstimatedTokens int
}

// LogOutgoing logs a built vendor payload.
func (il *InvocationLogger) LogOutgoing(info *OutgoingInfo) {
	if !il.enabled {
		return
	}
	il.logger.Debug().
		Str("request_id", info.RequestID).
		Str("model", info.Model).
		Str("family", info.Family).
		Int("payload_bytes", info.PayloadBytes).
		Int("estimated_tokens", info.EstimatedTokens).
		Msg("outgoing")
}

// CompletedInfo describes a parsed invocation result.
type CompletedInfo struct {
	RequestID string
	Model     string
	Family    string
	Usage     adapters.Usage
	Latency   time.Duration
}

// LogCompleted logs a completed invocation with extracted usage.
func (il *InvocationLogger) LogCompleted(info *CompletedInfo) {
	if !il.enabled {
		return
	}
	il.logger.Info().
		Str("request_id", info.RequestID).
		Str("model", info.Model).
		Str("family", info.Family).
		Int("input_tokens", info.Usage.InputTokens).
		Int("output_tokens", info.Usage.OutputTokens).
		Dur("latency", info.Latency).
		Msg("invocation")
}
