package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/noema/internal/cache"
	"github.com/ppiankov/noema/internal/model"
)

type countingProvider struct {
	text  string
	err   error
	calls int
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &GenerateResponse{Text: p.text, Model: "counting", TokensUsed: 42}, nil
}

func (p *countingProvider) IsAvailable(ctx context.Context) bool { return true }

func TestGenerator_Disabled(t *testing.T) {
	gen, err := NewGenerator(Config{Provider: ""}, testController(model.CostConfig{}))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}
	if gen.IsEnabled() {
		t.Error("Expected generator disabled with empty provider name")
	}
	if _, err := gen.Generate(context.Background(), "prompt", model.ModeDefinition); err == nil {
		t.Error("Expected error from disabled generator")
	}

	var nilGen *Generator
	if nilGen.IsEnabled() {
		t.Error("Expected nil generator to report disabled")
	}
}

func TestGenerator_UnknownProvider(t *testing.T) {
	if _, err := NewGenerator(Config{Provider: "mystery"}, testController(model.CostConfig{})); err == nil {
		t.Error("Expected error for unknown provider name")
	}
}

func TestGenerator_RecordsUsage(t *testing.T) {
	cost := testController(model.CostConfig{DailyTokenBudget: 1000})
	provider := &countingProvider{text: "generated [1]"}
	gen := NewGeneratorWithProvider(provider, cost, Config{Provider: "counting", MaxTokens: 100})

	text, err := gen.Generate(context.Background(), "prompt", model.ModeDefinition)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text != "generated [1]" {
		t.Errorf("Unexpected text: %q", text)
	}
	if cost.UsedToday() != 42 {
		t.Errorf("Expected 42 tokens booked, got %d", cost.UsedToday())
	}
}

func TestGenerator_CacheHitSkipsProvider(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	cost := NewCostController(model.CostConfig{RequestsPerMinute: 6000}, mem, time.Minute)
	provider := &countingProvider{text: "generated [1]"}
	gen := NewGeneratorWithProvider(provider, cost, Config{Provider: "counting", MaxTokens: 100})

	if _, err := gen.Generate(context.Background(), "prompt", model.ModeDefinition); err != nil {
		t.Fatalf("First generate failed: %v", err)
	}
	if _, err := gen.Generate(context.Background(), "prompt", model.ModeDefinition); err != nil {
		t.Fatalf("Second generate failed: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("Expected one provider call with a warm cache, got %d", provider.calls)
	}

	// A different mode misses the cache.
	if _, err := gen.Generate(context.Background(), "prompt", model.ModeCritical); err != nil {
		t.Fatalf("Third generate failed: %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("Expected cache miss on different mode, got %d calls", provider.calls)
	}
}

func TestGenerator_QuotaFailureSurfaces(t *testing.T) {
	cost := testController(model.CostConfig{DailyTokenBudget: 5})
	cost.Record(5)
	provider := &countingProvider{text: "never reached"}
	gen := NewGeneratorWithProvider(provider, cost, Config{Provider: "counting"})

	_, err := gen.Generate(context.Background(), "a prompt that costs tokens", model.ModeDefinition)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("Expected ErrQuotaExceeded, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("Expected provider untouched after quota rejection, got %d calls", provider.calls)
	}
}
