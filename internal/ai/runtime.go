package ai

import "context"

// Transport sends one prompt to a model backend and returns whatever the
// backend produced. The response shape depends on the backend; Extract turns
// it into narrative text.
type Transport interface {
	Complete(ctx context.Context, prompt string) (any, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, prompt string) (any, error)

func (f TransportFunc) Complete(ctx context.Context, prompt string) (any, error) {
	return f(ctx, prompt)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderHTTP       = "http"
	ProviderOllama     = "ollama"
)
