package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/modelbridge/gateway/internal/adapters"
	"github.com/modelbridge/gateway/internal/monitoring"
	"github.com/modelbridge/gateway/internal/store"
)

// invokeResponse is the normalized invocation result returned to callers.
type invokeResponse struct {
	Model  string           `json:"model"`
	Family string           `json:"family"`
	Result *adapters.Result `json:"result"`
}

// errorResponse is the error envelope returned on any failure.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleInvoke resolves the model, transforms the request, invokes the
// model, and normalizes the response.
//
// Error mapping:
//   - bad JSON / UnsupportedParameterError → 400 (caller must change the request)
//   - UnknownModelError                    → 404 (no binding for the model ID)
//   - upstream / MalformedResponseError    → 502 (provider-side failure)
func (g *Gateway) handleInvoke(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := monitoring.RequestIDFromContext(r.Context())
	model := r.PathValue("model")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		g.writeError(w, "invalid_request", "failed to read request body", http.StatusBadRequest)
		return
	}

	var req adapters.Request
	if err := json.Unmarshal(body, &req); err != nil {
		g.writeError(w, "invalid_request", "request body is not valid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	adapter, err := g.registry.Resolve(model)
	if err != nil {
		var unknown *adapters.UnknownModelError
		if errors.As(err, &unknown) {
			g.writeError(w, "unknown_model", err.Error(), http.StatusNotFound)
			return
		}
		g.writeError(w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	g.invLogger.LogResolved(requestID, model, adapter.Family())

	payload, err := adapter.BuildRequest(&req)
	if err != nil {
		var unsupported *adapters.UnsupportedParameterError
		if errors.As(err, &unsupported) {
			g.writeError(w, "unsupported_parameter", err.Error(), http.StatusBadRequest)
			return
		}
		g.writeError(w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}

	if g.invLogger.Enabled() {
		g.invLogger.LogOutgoing(&monitoring.OutgoingInfo{
			RequestID:       requestID,
			Model:           model,
			Family:          adapter.Family(),
			PayloadBytes:    len(payload),
			EstimatedTokens: g.invLogger.EstimateTokens(&req),
		})
	}

	vendorBody, err := g.invoker.Invoke(r.Context(), model, payload)
	if err != nil {
		g.recordInvocation(requestID, model, adapter.Family(), http.StatusBadGateway, adapters.Usage{}, time.Since(start))
		g.writeError(w, "upstream_error", err.Error(), http.StatusBadGateway)
		return
	}

	result, err := adapter.ParseResponse(vendorBody)
	if err != nil {
		var malformed *adapters.MalformedResponseError
		status := http.StatusInternalServerError
		kind := "internal"
		if errors.As(err, &malformed) {
			status = http.StatusBadGateway
			kind = "malformed_response"
		}
		g.recordInvocation(requestID, model, adapter.Family(), status, adapters.Usage{}, time.Since(start))
		g.writeError(w, kind, err.Error(), status)
		return
	}

	latency := time.Since(start)
	g.recordInvocation(requestID, model, adapter.Family(), http.StatusOK, result.Usage, latency)
	g.invLogger.LogCompleted(&monitoring.CompletedInfo{
		RequestID: requestID,
		Model:     model,
		Family:    adapter.Family(),
		Usage:     result.Usage,
		Latency:   latency,
	})

	g.writeJSON(w, http.StatusOK, invokeResponse{
		Model:  model,
		Family: adapter.Family(),
		Result: result,
	})
}

// handleRecentInvocations returns the newest audit records.
func (g *Gateway) handleRecentInvocations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			g.writeError(w, "invalid_request", "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := g.store.RecentInvocations(limit)
	if err != nil {
		g.writeError(w, "internal", err.Error(), http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []*store.InvocationRecord{}
	}
	g.writeJSON(w, http.StatusOK, records)
}

// handleHealth reports liveness.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) recordInvocation(requestID, model, family string, status int, usage adapters.Usage, latency time.Duration) {
	err := g.store.RecordInvocation(&store.InvocationRecord{
		RequestID:    requestID,
		Model:        model,
		Family:       family,
		StatusCode:   status,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Latency:      latency,
	})
	if err != nil {
		// Audit failure must not fail the request.
		log.Warn().Err(err).Str("request_id", requestID).Msg("failed to record invocation")
	}
}

func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func (g *Gateway) writeError(w http.ResponseWriter, kind, message string, status int) {
	g.writeJSON(w, status, errorResponse{Error: errorDetail{Type: kind, Message: message}})
}
