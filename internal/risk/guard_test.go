package risk

import (
	"testing"

	"github.com/shopspring/decimal"

	"kraterm/models"
)

func testConfig() Config {
	half := decimal.NewFromFloat(0.5)
	return Config{
		Defaults: SymbolLimits{
			MaxOrderQty:          decimal.NewFromFloat(1.0),
			MaxNotionalValue:     decimal.NewFromInt(100000),
			ConfirmAboveNotional: decimal.NewFromInt(50000),
			MaxTradesPerDay:      3,
			MaxTradesPerWeek:     10,
			MaxTradesPerMonth:    30,
		},
		Symbols: map[string]SymbolOverrides{
			"BTC/USD": {MaxOrderQty: &half},
		},
	}
}

func params(symbol string, qty float64, price *float64) models.AddOrderParams {
	p := models.AddOrderParams{OrderType: models.OrderTypeLimit, Side: models.SideBuy, Symbol: symbol, OrderQty: decimal.NewFromFloat(qty)}
	if price != nil {
		d := decimal.NewFromFloat(*price)
		p.LimitPrice = &d
	} else {
		p.OrderType = models.OrderTypeMarket
	}
	return p
}

func f(v float64) *float64 { return &v }

func TestCheckOrderRejectsNonPositiveQuantity(t *testing.T) {
	g := NewGuard(testConfig())
	if _, err := g.CheckOrder(params("BTC/USD", 0, f(50000))); err == nil {
		t.Fatal("expected an error for zero quantity")
	}
}

func TestCheckOrderRejectsOverMaxQty(t *testing.T) {
	g := NewGuard(testConfig())
	if _, err := g.CheckOrder(params("BTC/USD", 0.6, f(50000))); err == nil {
		t.Fatal("expected an error for quantity over the BTC/USD override")
	}
}

func TestCheckOrderRejectsOverMaxNotional(t *testing.T) {
	g := NewGuard(testConfig())
	if _, err := g.CheckOrder(params("ETH/USD", 1.0, f(200000))); err == nil {
		t.Fatal("expected an error for notional over the default max")
	}
}

func TestCheckOrderRequiresConfirmationAboveThreshold(t *testing.T) {
	g := NewGuard(testConfig())
	verdict, err := g.CheckOrder(params("BTC/USD", 0.4, f(130000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != RequiresConfirmation {
		t.Fatalf("expected RequiresConfirmation, got %v", verdict)
	}
}

func TestCheckOrderApprovesWellWithinLimits(t *testing.T) {
	g := NewGuard(testConfig())
	verdict, err := g.CheckOrder(params("BTC/USD", 0.1, f(50000)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != Approved {
		t.Fatalf("expected Approved, got %v", verdict)
	}
}

func TestMarketOrdersSkipNotionalChecks(t *testing.T) {
	g := NewGuard(testConfig())
	verdict, err := g.CheckOrder(params("ETH/USD", 0.5, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict != Approved {
		t.Fatalf("expected Approved, got %v", verdict)
	}
}

func TestRateLimitAfterNSubmissions(t *testing.T) {
	g := NewGuard(testConfig())
	p := params("BTC/USD", 0.1, f(50000))

	for i := 0; i < 3; i++ {
		if _, err := g.CheckOrder(p); err != nil {
			t.Fatalf("submission %d: unexpected error: %v", i, err)
		}
		g.RecordSubmission("BTC/USD")
	}

	if _, err := g.CheckOrder(p); err == nil {
		t.Fatal("expected the 4th same-day submission to be rejected")
	}
}

func TestRateLimitsAreIndependentPerSymbol(t *testing.T) {
	g := NewGuard(testConfig())
	for i := 0; i < 3; i++ {
		g.RecordSubmission("BTC/USD")
	}
	if _, err := g.CheckOrder(params("ETH/USD", 0.5, f(1000))); err != nil {
		t.Fatalf("expected ETH/USD to be unaffected by BTC/USD's rate limit, got %v", err)
	}
}

func TestPruneStaleEntriesDoesNotPanicOnEmpty(t *testing.T) {
	g := NewGuard(testConfig())
	g.PruneStaleEntries()
}

func TestLimitsForMergesOverridesAndInheritsRest(t *testing.T) {
	cfg := testConfig()
	btc := cfg.LimitsFor("BTC/USD")
	if !btc.MaxOrderQty.Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("expected overridden max_order_qty 0.5, got %s", btc.MaxOrderQty)
	}
	if btc.MaxTradesPerDay != 3 {
		t.Fatalf("expected inherited max_trades_per_day 3, got %d", btc.MaxTradesPerDay)
	}

	sol := cfg.LimitsFor("SOL/USD")
	if !sol.MaxOrderQty.Equal(decimal.NewFromFloat(1.0)) {
		t.Fatalf("expected an unknown symbol to get the defaults, got %s", sol.MaxOrderQty)
	}
}
