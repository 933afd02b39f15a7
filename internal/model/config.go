package model

import "time"

// Config is the complete noema configuration. Loaded from
// ~/.noema/config.yaml, overridable via NOEMA_* env vars and flags.
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Scan        ScanConfig        `yaml:"scan"`
	LLM         LLMConfig         `yaml:"llm"`
	Cost        CostConfig        `yaml:"cost"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"` // Database file; empty means ~/.noema/noema.db
}

// ScanConfig tunes the term scanner.
type ScanConfig struct {
	SnippetRadius int `yaml:"snippet_radius"` // Context chars kept on each side of a match
}

// LLMConfig configures the external generator.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "openai", "anthropic", "ollama", "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // Seconds per generator call
	MaxTokens int    `yaml:"max_tokens"`
}

// CostConfig bounds generator spending. All checks are applied before the
// call; a tripped check is treated as a generator failure and synthesis
// falls back to deterministic composition.
type CostConfig struct {
	DailyTokenBudget  int     `yaml:"daily_token_budget"` // Estimated tokens per UTC day, 0 = unlimited
	MaxPromptTokens   int     `yaml:"max_prompt_tokens"`  // Hard cap on a single prompt
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
}

// CacheConfig controls the generator response cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"` // Disk layer location; empty means ~/.noema/cache
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig sizes the reindex worker pool.
type ConcurrencyConfig struct {
	ReindexWorkers int `yaml:"reindex_workers"`
}

// OutputConfig controls CLI rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{},
		Scan: ScanConfig{
			SnippetRadius: 100,
		},
		LLM: LLMConfig{
			Provider:  "", // Disabled by default
			Timeout:   30,
			MaxTokens: 1200,
		},
		Cost: CostConfig{
			DailyTokenBudget:  200_000,
			MaxPromptTokens:   8_000,
			RequestsPerMinute: 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ReindexWorkers: 4,
		},
		Output: OutputConfig{},
	}
}
