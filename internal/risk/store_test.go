package risk

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSaveThenLoadAgentLimitsRoundTrips(t *testing.T) {
	half := decimal.NewFromFloat(0.5)
	cfg := Config{
		Defaults: SymbolLimits{
			MaxOrderQty:          decimal.NewFromFloat(1.0),
			MaxNotionalValue:     decimal.NewFromInt(100000),
			ConfirmAboveNotional: decimal.NewFromInt(50000),
			MaxTradesPerDay:      50,
			MaxTradesPerWeek:     200,
			MaxTradesPerMonth:    500,
		},
		Symbols: map[string]SymbolOverrides{
			"BTC/USD": {MaxOrderQty: &half},
		},
	}

	path := filepath.Join(t.TempDir(), "agent_risk.json")
	if err := SaveAgentLimits(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadAgentLimits(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !loaded.Defaults.MaxOrderQty.Equal(cfg.Defaults.MaxOrderQty) {
		t.Fatalf("expected defaults to round-trip, got %s", loaded.Defaults.MaxOrderQty)
	}
	btc := loaded.LimitsFor("BTC/USD")
	if !btc.MaxOrderQty.Equal(half) {
		t.Fatalf("expected BTC/USD override to round-trip, got %s", btc.MaxOrderQty)
	}
}

func TestLoadHardLimitsMissingFileFails(t *testing.T) {
	if _, err := LoadHardLimits(filepath.Join(t.TempDir(), "does_not_exist.json")); err == nil {
		t.Fatal("expected an error loading a missing risk file")
	}
}
