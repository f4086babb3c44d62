// Registry maps opaque Bedrock model IDs to adapter factories.
//
// DESIGN: An ordered list of (compiled regexp, factory) bindings. Resolution
// scans in registration order and the FIRST matching binding wins. Family
// naming patterns overlap ("amazon.titan-embed..." also matches a general
// "amazon.titan" pattern), so a specific pattern must be registered before
// the general one that would shadow it. The registry never reorders bindings
// by specificity.
//
// Production wiring registers everything once at startup and treats the
// registry as read-only afterwards; the mutex exists so the sequencing is
// not load-bearing for memory safety.
package adapters

import (
	"regexp"
	"sync"
)

// Factory produces the adapter for a binding. Factories may return a shared
// stateless singleton or a fresh instance; both are valid because adapters
// carry no per-call state.
type Factory func() Adapter

type binding struct {
	expr    string
	pattern *regexp.Regexp
	factory Factory
}

// Registry is an ordered collection of pattern → factory bindings.
type Registry struct {
	mu       sync.RWMutex
	bindings []binding
}

// NewRegistry creates an empty registry. Tests should build their own
// instance rather than mutate shared state.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register compiles expr and appends a binding for it. An invalid expression
// returns a ConfigurationError; startup must treat that as fatal. Duplicate
// registrations are allowed — resolution order decides which wins.
func (r *Registry) Register(expr string, factory Factory) error {
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return &ConfigurationError{Pattern: expr, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = append(r.bindings, binding{expr: expr, pattern: pattern, factory: factory})
	return nil
}

// MustRegister is Register for static startup wiring, panicking on a bad
// pattern.
func (r *Registry) MustRegister(expr string, factory Factory) {
	if err := r.Register(expr, factory); err != nil {
		panic(err)
	}
}

// Resolve returns the adapter of the first binding whose pattern matches
// model, in registration order. Returns UnknownModelError if nothing
// matches; that is a request-level failure, not retryable without changing
// the model ID or the registry.
func (r *Registry) Resolve(model string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bindings {
		if b.pattern.MatchString(model) {
			return b.factory(), nil
		}
	}
	return nil, &UnknownModelError{Model: model}
}

// Patterns returns the registered pattern expressions in order.
// Used for startup logging.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exprs := make([]string, len(r.bindings))
	for i, b := range r.bindings {
		exprs[i] = b.expr
	}
	return exprs
}

// NewDefaultRegistry creates a registry with all built-in families bound.
// ORDER MATTERS: "^amazon\.titan-embed" must precede "^amazon\.titan" or
// embedding models would resolve to the text adapter.
func NewDefaultRegistry() *Registry {
	claude := NewClaudeAdapter()
	llama := NewLlamaChatAdapter()
	mistral := NewMistralAdapter()
	titanEmbed := NewTitanEmbeddingsAdapter()
	titan := NewTitanTextAdapter()

	r := NewRegistry()
	r.MustRegister(`^anthropic\.claude`, func() Adapter { return claude })
	r.MustRegister(`^meta\.llama`, func() Adapter { return llama })
	r.MustRegister(`^mistral\.mi`, func() Adapter { return mistral })
	r.MustRegister(`^amazon\.titan-embed`, func() Adapter { return titanEmbed })
	r.MustRegister(`^amazon\.titan`, func() Adapter { return titan })
	return r
}
