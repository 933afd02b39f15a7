package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/noema/internal/cache"
	"github.com/ppiankov/noema/internal/model"
)

// Cost-control failures. The synthesis engine treats both exactly like any
// other generator failure: fall through to deterministic composition.
var (
	ErrQuotaExceeded = errors.New("daily token quota exceeded")
	ErrPromptTooLong = errors.New("prompt exceeds token cap")
)

// CostController gates generator calls: prompt-token cap, daily token
// quota, request smoothing, and a response cache keyed by a hash of the
// prompt and parameters. Injected wherever generation happens; never a
// hidden module-level singleton.
type CostController struct {
	mu        sync.Mutex
	day       string // UTC day the counter belongs to, "2006-01-02"
	usedToday int

	budget    int // Estimated tokens per UTC day, 0 = unlimited
	promptCap int // Hard cap on a single prompt, 0 = unlimited
	limiter   *rate.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewCostController creates a controller from config. responses may be nil
// to disable response caching.
func NewCostController(cfg model.CostConfig, responses cache.Cache, cacheTTL time.Duration) *CostController {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}
	return &CostController{
		budget:    cfg.DailyTokenBudget,
		promptCap: cfg.MaxPromptTokens,
		limiter:   rate.NewLimiter(rate.Limit(rpm/60), 1),
		cache:     responses,
		cacheTTL:  cacheTTL,
	}
}

// EstimateTokens approximates the token count of text. The usual rough
// heuristic of four characters per token; only used for pre-call gating,
// providers report real usage afterwards.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}

// Admit checks a prompt against the cap and quota and waits for rate-limit
// clearance. Call before every generator request.
func (c *CostController) Admit(ctx context.Context, prompt string) error {
	estimated := EstimateTokens(prompt)
	if c.promptCap > 0 && estimated > c.promptCap {
		return fmt.Errorf("%w: estimated %d tokens, cap %d", ErrPromptTooLong, estimated, c.promptCap)
	}

	c.mu.Lock()
	c.rollDay()
	if c.budget > 0 && c.usedToday+estimated > c.budget {
		used := c.usedToday
		c.mu.Unlock()
		return fmt.Errorf("%w: %d of %d used today", ErrQuotaExceeded, used, c.budget)
	}
	c.mu.Unlock()

	return c.limiter.Wait(ctx)
}

// Record books the actual token usage of a completed call.
func (c *CostController) Record(tokens int) {
	if tokens <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDay()
	c.usedToday += tokens
}

// UsedToday reports the tokens booked against the current UTC day.
func (c *CostController) UsedToday() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollDay()
	return c.usedToday
}

// rollDay resets the counter when the UTC day changes. Caller holds mu.
func (c *CostController) rollDay() {
	today := time.Now().UTC().Format("2006-01-02")
	if c.day != today {
		c.day = today
		c.usedToday = 0
	}
}

// ResponseKey derives the cache key for a generator call.
func ResponseKey(prompt string, mode model.SynthesisMode, modelName string, maxTokens int) string {
	return cache.CacheKey(fmt.Sprintf("%s|%s|%s|%d", prompt, mode, modelName, maxTokens))
}

// CachedResponse returns a previously cached generation, if any.
func (c *CostController) CachedResponse(key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	return c.cache.Get(key)
}

// StoreResponse caches a generation result.
func (c *CostController) StoreResponse(key, text string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Set(key, text, c.cacheTTL)
}

// Reset clears the daily counter and the response cache. Test hook only.
func (c *CostController) Reset() {
	c.mu.Lock()
	c.day = ""
	c.usedToday = 0
	c.mu.Unlock()
	if c.cache != nil {
		_ = c.cache.Clear()
	}
}
