// Package llm is the external text-generation backend: provider clients,
// the cost-control gate, and the generator facade the synthesis engine
// calls. The backend is a black box here: given a prompt it returns text
// or fails. Grounding and citation discipline live in the synthesis engine.
package llm

import (
	"context"

	"github.com/ppiankov/noema/internal/model"
)

// Provider defines the interface for generation backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces narrative text for the given request
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one generation call.
type GenerateRequest struct {
	// Prompt is the full prompt, evidence excerpts included
	Prompt string

	// Mode selects the narrative structure being requested
	Mode model.SynthesisMode

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// GenerateResponse contains the provider's output.
type GenerateResponse struct {
	// Text is the generated narrative
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption for quota bookkeeping
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1200,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}

// systemPrompt instructs every provider the same way: draw only on the
// supplied excerpts and cite them by their bracketed index.
const systemPrompt = "You are a research assistant writing grounded narratives about tracked terms. " +
	"You may only draw on the numbered evidence excerpts supplied in the prompt. " +
	"Cite an excerpt by its bracketed number, e.g. [2], immediately after every sentence that draws on it. " +
	"Never introduce facts that are not in an excerpt."
