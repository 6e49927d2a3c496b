package ai

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"
)

// RuntimeFactory builds a Transport from the generic config below.
type RuntimeFactory func(RuntimeConfig) (Transport, error)

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64
	HTTPTimeout time.Duration
	// RetryMax is the per-call HTTP retry budget for 429/5xx. It defaults to 1
	// because the Summarizer owns the attempt loop.
	RetryMax  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Hosted providers
	APIKey  string
	BaseURL string
	// Ollama
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[name] = f }

// GetRuntime creates a Transport for the given provider. Unknown providers are
// a configuration error.
func GetRuntime(name string, cfg RuntimeConfig) (Transport, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownProvider, name, Providers())
	}
	return f(cfg)
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resolveAPIKey(key string) (string, error) {
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

func userRequest(c RuntimeConfig, prompt string) GenerateRequest {
	return GenerateRequest{
		Model:       c.Model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	}
}

// init registers built-in runtimes.
func init() {
	RegisterRuntime(ProviderOpenAI, func(c RuntimeConfig) (Transport, error) {
		key, err := resolveAPIKey(c.APIKey)
		if err != nil {
			return nil, err
		}
		client := NewOpenAIClient(key, c.BaseURL, c.HTTPTimeout)
		return TransportFunc(func(ctx context.Context, prompt string) (any, error) {
			return client.Generate(ctx, userRequest(c, prompt))
		}), nil
	})
	flat := func(c RuntimeConfig) (Transport, error) {
		key, err := resolveAPIKey(c.APIKey)
		if err != nil {
			return nil, err
		}
		client := NewClientWithBaseURL(key, c.HTTPTimeout, c.RetryMax, c.BaseDelay, c.MaxDelay, c.BaseURL)
		return TransportFunc(func(ctx context.Context, prompt string) (any, error) {
			return client.Generate(ctx, userRequest(c, prompt))
		}), nil
	}
	RegisterRuntime(ProviderOpenRouter, flat)
	RegisterRuntime(ProviderHTTP, flat)
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) (Transport, error) {
		client := NewOllamaClient(c.Host, c.HTTPTimeout, c.RetryMax, c.BaseDelay)
		return TransportFunc(func(ctx context.Context, prompt string) (any, error) {
			return client.Generate(ctx, userRequest(c, prompt))
		}), nil
	})
}
