package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/noema/internal/cache"
	"github.com/ppiankov/noema/internal/evidence"
	"github.com/ppiankov/noema/internal/index"
	"github.com/ppiankov/noema/internal/llm"
	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/scan"
	"github.com/ppiankov/noema/internal/store"
)

// app bundles the opened store with the services every command needs.
type app struct {
	cfg        *model.Config
	store      *store.Store
	scanner    *scan.Scanner
	index      *index.Index
	aggregator *evidence.Aggregator
}

// openApp loads configuration and opens the store. Callers must Close.
func openApp() (*app, error) {
	cfg := loadConfig()

	path := cfg.Store.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}
		path = filepath.Join(home, ".noema", "noema.db")
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	scanner := scan.NewScanner(cfg.Scan.SnippetRadius)
	return &app{
		cfg:        cfg,
		store:      st,
		scanner:    scanner,
		index:      index.New(st, scanner),
		aggregator: evidence.New(st),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing store: %v\n", err)
	}
}

// newGenerator builds the cost-gated generator from config. Returns a
// disabled generator when no provider is configured.
func (a *app) newGenerator() (*llm.Generator, error) {
	llmCfg := llm.ConfigFromModel(a.cfg.LLM)

	// API keys come from the environment, never the config file.
	switch llmCfg.Provider {
	case "openai":
		if llmCfg.APIKey == "" {
			llmCfg.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if llmCfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if llmCfg.APIKey == "" {
			llmCfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if llmCfg.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && llmCfg.BaseURL == "" {
			llmCfg.BaseURL = baseURL
		}
	}

	cost := llm.NewCostController(a.cfg.Cost, a.responseCache(), a.cfg.Cache.TTL)
	return llm.NewGenerator(llmCfg, cost)
}

// responseCache builds the generator response cache per config: memory
// plus disk when a cache dir is resolvable, memory-only otherwise, nil
// when disabled.
func (a *app) responseCache() cache.Cache {
	if !a.cfg.Cache.Enabled {
		return nil
	}
	ttl := a.cfg.Cache.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	dir := a.cfg.Cache.Dir
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".noema", "cache")
		}
	}
	if dir == "" {
		return cache.NewMemoryCache(ttl, 10*time.Minute)
	}
	return cache.NewLayeredCache(ttl, dir, ttl)
}

// loadConfig overlays viper state (config file, NOEMA_* env, bound flags)
// onto the defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("store.path"); v != "" {
		cfg.Store.Path = v
	}
	if viper.IsSet("scan.snippet_radius") {
		cfg.Scan.SnippetRadius = viper.GetInt("scan.snippet_radius")
	}

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetInt("llm.timeout")
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}

	if viper.IsSet("cost.daily_token_budget") {
		cfg.Cost.DailyTokenBudget = viper.GetInt("cost.daily_token_budget")
	}
	if viper.IsSet("cost.max_prompt_tokens") {
		cfg.Cost.MaxPromptTokens = viper.GetInt("cost.max_prompt_tokens")
	}
	if viper.IsSet("cost.requests_per_minute") {
		cfg.Cost.RequestsPerMinute = viper.GetFloat64("cost.requests_per_minute")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if viper.IsSet("cache.ttl") {
		cfg.Cache.TTL = viper.GetDuration("cache.ttl")
	}

	if viper.IsSet("concurrency.reindex_workers") {
		cfg.Concurrency.ReindexWorkers = viper.GetInt("concurrency.reindex_workers")
	}

	cfg.Output.Verbose = viper.GetBool("verbose")
	return cfg
}
