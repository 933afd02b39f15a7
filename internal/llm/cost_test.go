package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/noema/internal/cache"
	"github.com/ppiankov/noema/internal/model"
)

func testController(cfg model.CostConfig) *CostController {
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 6000 // keep tests fast
	}
	return NewCostController(cfg, nil, 0)
}

func TestCostController_Admit_PromptCap(t *testing.T) {
	c := testController(model.CostConfig{MaxPromptTokens: 10})

	if err := c.Admit(context.Background(), "short"); err != nil {
		t.Errorf("Expected short prompt admitted, got %v", err)
	}

	long := strings.Repeat("x", 100) // ~26 estimated tokens
	err := c.Admit(context.Background(), long)
	if !errors.Is(err, ErrPromptTooLong) {
		t.Errorf("Expected ErrPromptTooLong, got %v", err)
	}
}

func TestCostController_Admit_DailyQuota(t *testing.T) {
	c := testController(model.CostConfig{DailyTokenBudget: 50})

	if err := c.Admit(context.Background(), "first call"); err != nil {
		t.Fatalf("Expected first call admitted, got %v", err)
	}
	c.Record(49)

	err := c.Admit(context.Background(), "next call")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("Expected ErrQuotaExceeded, got %v", err)
	}
	if c.UsedToday() != 49 {
		t.Errorf("Expected 49 tokens booked, got %d", c.UsedToday())
	}
}

func TestCostController_ZeroBudgetUnlimited(t *testing.T) {
	c := testController(model.CostConfig{})

	c.Record(1_000_000)
	if err := c.Admit(context.Background(), "still fine"); err != nil {
		t.Errorf("Expected unlimited budget, got %v", err)
	}
}

func TestCostController_Reset(t *testing.T) {
	c := testController(model.CostConfig{DailyTokenBudget: 50})

	c.Record(49)
	c.Reset()

	if c.UsedToday() != 0 {
		t.Errorf("Expected counter cleared, got %d", c.UsedToday())
	}
	if err := c.Admit(context.Background(), "after reset"); err != nil {
		t.Errorf("Expected admission after reset, got %v", err)
	}
}

func TestCostController_ResponseCache(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	c := NewCostController(model.CostConfig{RequestsPerMinute: 6000}, mem, time.Minute)

	key := ResponseKey("prompt", model.ModeDefinition, "m", 100)
	if _, found := c.CachedResponse(key); found {
		t.Error("Expected cache miss before store")
	}

	c.StoreResponse(key, "cached text")
	got, found := c.CachedResponse(key)
	if !found || got != "cached text" {
		t.Errorf("Expected cached response, got %q found=%v", got, found)
	}

	// Different parameters derive a different key.
	other := ResponseKey("prompt", model.ModeCritical, "m", 100)
	if other == key {
		t.Error("Expected mode to participate in the cache key")
	}

	c.Reset()
	if _, found := c.CachedResponse(key); found {
		t.Error("Expected cache cleared by Reset")
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("Expected 0 for empty text, got %d", got)
	}
	if got := EstimateTokens("abcd"); got != 2 {
		t.Errorf("Expected 2 for four chars, got %d", got)
	}
	if got := EstimateTokens(strings.Repeat("x", 400)); got != 101 {
		t.Errorf("Expected 101 for 400 chars, got %d", got)
	}
}
