package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/noema/internal/model"
)

// Generator is the facade the synthesis engine talks to: one configured
// provider wrapped by the cost controller. A nil provider means generation
// is disabled and every call fails, which callers treat as a fallback
// trigger, never an error to surface.
type Generator struct {
	provider Provider
	cost     *CostController
	config   Config
}

// NewGenerator creates a generator from config. With an empty provider name
// the generator is disabled but still valid.
func NewGenerator(config Config, cost *CostController) (*Generator, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Generator{provider: provider, cost: cost, config: config}, nil
}

// NewGeneratorWithProvider wires an explicit provider. Used by tests.
func NewGeneratorWithProvider(provider Provider, cost *CostController, config Config) *Generator {
	return &Generator{provider: provider, cost: cost, config: config}
}

// IsEnabled reports whether a provider is configured.
func (g *Generator) IsEnabled() bool {
	return g != nil && g.provider != nil
}

// ProviderName returns the configured provider's name, or "" when disabled.
func (g *Generator) ProviderName() string {
	if !g.IsEnabled() {
		return ""
	}
	return g.provider.Name()
}

// Generate runs one gated generator call: admission (prompt cap, quota,
// rate limit), response cache lookup, the provider round trip, usage
// bookkeeping, cache store. Any error from any stage means the caller
// falls back to deterministic composition.
func (g *Generator) Generate(ctx context.Context, prompt string, mode model.SynthesisMode) (string, error) {
	if !g.IsEnabled() {
		return "", fmt.Errorf("generator disabled")
	}

	if err := g.cost.Admit(ctx, prompt); err != nil {
		return "", err
	}

	key := ResponseKey(prompt, mode, g.config.Model, g.config.MaxTokens)
	if text, found := g.cost.CachedResponse(key); found {
		return text, nil
	}

	resp, err := g.provider.Generate(ctx, GenerateRequest{
		Prompt:    prompt,
		Mode:      mode,
		Model:     g.config.Model,
		MaxTokens: g.config.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	tokens := resp.TokensUsed
	if tokens == 0 {
		tokens = EstimateTokens(prompt) + EstimateTokens(resp.Text)
	}
	g.cost.Record(tokens)
	g.cost.StoreResponse(key, resp.Text)

	return resp.Text, nil
}
