// Package gateway is the HTTP request handler in front of adapter
// resolution: it accepts normalized invocation requests, resolves the model
// ID to an adapter, invokes the model over the Bedrock runtime transport,
// and returns the normalized result.
package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/modelbridge/gateway/external"
	"github.com/modelbridge/gateway/internal/adapters"
	"github.com/modelbridge/gateway/internal/config"
	"github.com/modelbridge/gateway/internal/monitoring"
	"github.com/modelbridge/gateway/internal/store"
)

// Gateway wires the registry, invoker and store behind the HTTP surface.
type Gateway struct {
	cfg       *config.Config
	registry  *adapters.Registry
	invoker   external.Invoker
	store     store.Store
	invLogger *monitoring.InvocationLogger
	server    *http.Server
}

// New creates a gateway. All collaborators are required; the registry must
// be fully populated before the first request is served.
func New(cfg *config.Config, registry *adapters.Registry, invoker external.Invoker, st store.Store, logger *monitoring.Logger) *Gateway {
	return &Gateway{
		cfg:       cfg,
		registry:  registry,
		invoker:   invoker,
		store:     st,
		invLogger: monitoring.NewInvocationLogger(logger, cfg.Monitoring.InvocationLog),
	}
}

// Handler builds the route table wrapped in the middleware chain.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/model/{model}/invoke", g.handleInvoke)
	mux.HandleFunc("GET /v1/invocations", g.handleRecentInvocations)
	mux.HandleFunc("GET /health", g.handleHealth)

	var handler http.Handler = mux
	handler = g.loggingMiddleware(handler)
	handler = g.panicRecovery(handler)
	return handler
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", g.cfg.Server.Port),
		Handler:      g.Handler(),
		ReadTimeout:  g.cfg.Server.ReadTimeout,
		WriteTimeout: g.cfg.Server.WriteTimeout,
	}

	log.Info().
		Int("port", g.cfg.Server.Port).
		Strs("patterns", g.registry.Patterns()).
		Msg("gateway listening")

	if err := g.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}
