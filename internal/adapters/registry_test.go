package adapters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// REGISTRATION
// =============================================================================

func TestRegistry_Register_InvalidPattern(t *testing.T) {
	r := NewRegistry()
	err := r.Register(`^anthropic\.(claude`, func() Adapter { return NewClaudeAdapter() })

	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, `^anthropic\.(claude`, cfgErr.Pattern)
}

func TestRegistry_MustRegister_PanicsOnInvalidPattern(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(`(`, func() Adapter { return NewClaudeAdapter() })
	})
}

func TestRegistry_Register_DuplicatesAllowed(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(`^vendorA\.family`, func() Adapter { return NewClaudeAdapter() }))
	require.NoError(t, r.Register(`^vendorA\.family`, func() Adapter { return NewLlamaChatAdapter() }))

	// First registration wins.
	adapter, err := r.Resolve("vendorA.family.variant1")
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude", adapter.Family())
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestRegistry_Resolve_UnknownModel(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(`^vendorA\.family\.`, func() Adapter { return NewClaudeAdapter() }))

	_, err := r.Resolve("vendorB.other")

	require.Error(t, err)
	var unknownErr *UnknownModelError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "vendorB.other", unknownErr.Model)
}

func TestRegistry_Resolve_EmptyRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("anthropic.claude-3-5-sonnet-20241022-v2:0")

	var unknownErr *UnknownModelError
	require.ErrorAs(t, err, &unknownErr)
}

// TestRegistry_Resolve_FirstMatchWins locks in the tie-break policy: with two
// overlapping patterns, resolution returns the first-registered match, and
// reversing the registration order reverses the result.
func TestRegistry_Resolve_FirstMatchWins(t *testing.T) {
	specific := `^vendorA\.family\.variant1.*`
	general := `^vendorA\.family\..*`

	specificThenGeneral := NewRegistry()
	specificThenGeneral.MustRegister(specific, func() Adapter { return NewLlamaChatAdapter() })
	specificThenGeneral.MustRegister(general, func() Adapter { return NewClaudeAdapter() })

	adapter, err := specificThenGeneral.Resolve("vendorA.family.variant1-v2")
	require.NoError(t, err)
	assert.Equal(t, "meta.llama", adapter.Family(), "specific pattern registered first must win")

	adapter, err = specificThenGeneral.Resolve("vendorA.family.variant9")
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude", adapter.Family(), "only the general pattern matches variant9")

	generalThenSpecific := NewRegistry()
	generalThenSpecific.MustRegister(general, func() Adapter { return NewClaudeAdapter() })
	generalThenSpecific.MustRegister(specific, func() Adapter { return NewLlamaChatAdapter() })

	adapter, err = generalThenSpecific.Resolve("vendorA.family.variant1-v2")
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude", adapter.Family(), "general pattern registered first shadows the specific one")
}

// =============================================================================
// DEFAULT REGISTRY
// =============================================================================

func TestDefaultRegistry_ResolvesBuiltinFamilies(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		family string
	}{
		{
			name:   "claude sonnet",
			model:  "anthropic.claude-3-5-sonnet-20241022-v2:0",
			family: "anthropic.claude",
		},
		{
			name:   "claude haiku",
			model:  "anthropic.claude-3-haiku-20240307-v1:0",
			family: "anthropic.claude",
		},
		{
			name:   "llama3 70b",
			model:  "meta.llama3-70b-instruct-v1:0",
			family: "meta.llama",
		},
		{
			name:   "llama2 13b chat",
			model:  "meta.llama2-13b-chat-v1",
			family: "meta.llama",
		},
		{
			name:   "mistral 7b",
			model:  "mistral.mistral-7b-instruct-v0:2",
			family: "mistral",
		},
		{
			name:   "mixtral 8x7b",
			model:  "mistral.mixtral-8x7b-instruct-v0:1",
			family: "mistral",
		},
		{
			name:   "titan text express",
			model:  "amazon.titan-text-express-v1",
			family: "amazon.titan",
		},
		{
			name:   "titan embeddings resolves before titan text",
			model:  "amazon.titan-embed-text-v2:0",
			family: "amazon.titan-embed",
		},
	}

	r := NewDefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := r.Resolve(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.family, adapter.Family())
		})
	}
}

func TestDefaultRegistry_UnknownVendor(t *testing.T) {
	r := NewDefaultRegistry()
	_, err := r.Resolve("cohere.command-text-v14")

	var unknownErr *UnknownModelError
	require.ErrorAs(t, err, &unknownErr)
	assert.Contains(t, err.Error(), "cohere.command-text-v14")
}

func TestDefaultRegistry_SharedSingletons(t *testing.T) {
	r := NewDefaultRegistry()

	a1, err := r.Resolve("anthropic.claude-3-5-sonnet-20241022-v2:0")
	require.NoError(t, err)
	a2, err := r.Resolve("anthropic.claude-3-opus-20240229-v1:0")
	require.NoError(t, err)

	// Built-in factories hand out shared stateless instances.
	assert.Same(t, a1, a2)
}

func TestRegistry_Patterns_PreservesOrder(t *testing.T) {
	r := NewDefaultRegistry()
	patterns := r.Patterns()

	require.Len(t, patterns, 5)
	embedIdx, titanIdx := -1, -1
	for i, p := range patterns {
		switch p {
		case `^amazon\.titan-embed`:
			embedIdx = i
		case `^amazon\.titan`:
			titanIdx = i
		}
	}
	require.NotEqual(t, -1, embedIdx)
	require.NotEqual(t, -1, titanIdx)
	assert.Less(t, embedIdx, titanIdx, "embed pattern must be registered before the general titan pattern")
}

// =============================================================================
// ERROR TEXTURE
// =============================================================================

func TestConfigurationError_Unwrap(t *testing.T) {
	r := NewRegistry()
	err := r.Register(`[`, func() Adapter { return NewClaudeAdapter() })

	require.Error(t, err)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "[")
}
