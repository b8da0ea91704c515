package ai

import "context"

// ProviderFunc fetches one block of analytical context for the model.
// It returns a JSON-encoded result string.
type ProviderFunc func(ctx context.Context) (string, error)

// ContextProvider is a named data source the agent consults before answering.
// Providers are read-only: the agent never writes through them.
type ContextProvider struct {
	Name        string
	Description string
	Fetch       ProviderFunc
}

// ProviderRegistry holds the context providers available for a question.
// The application layer registers providers when building the agent call, so
// the agent itself stays free of any store or report dependencies.
type ProviderRegistry struct {
	providers []ContextProvider
}

// NewProviderRegistry creates an empty ProviderRegistry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{}
}

// Register adds a provider to the registry.
func (r *ProviderRegistry) Register(p ContextProvider) {
	r.providers = append(r.providers, p)
}

// All returns all registered providers in registration order.
func (r *ProviderRegistry) All() []ContextProvider {
	return r.providers
}
