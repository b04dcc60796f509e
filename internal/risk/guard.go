package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kraterm/internal/errs"
	"kraterm/models"
)

// Verdict is the outcome of a successful risk check.
type Verdict int

const (
	// Approved means the order may be submitted immediately.
	Approved Verdict = iota
	// RequiresConfirmation means the order exceeds the confirmation
	// threshold and the operator must approve it before submission.
	RequiresConfirmation
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
)

// Guard validates orders against a Config before they are submitted, and
// tracks recent submissions per symbol to enforce the trade-frequency
// limits.
type Guard struct {
	mu      sync.Mutex
	config  Config
	history map[string][]time.Time
}

// NewGuard builds a Guard against the given config.
func NewGuard(config Config) *Guard {
	return &Guard{config: config, history: make(map[string][]time.Time)}
}

// SetConfig atomically replaces the limits a Guard checks against,
// picking up an operator's edits to the advisory limits file without
// restarting.
func (g *Guard) SetConfig(config Config) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = config
}

// Config returns a copy of the limits currently in effect, for callers
// applying an edit on top of the live config before calling SetConfig.
func (g *Guard) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.config.Clone()
}

// CheckOrder validates params against the effective limits for its
// symbol. It does not record the submission; call RecordSubmission after
// the order is accepted by the exchange.
func (g *Guard) CheckOrder(params models.AddOrderParams) (Verdict, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	symbol := params.Symbol
	qty := params.OrderQty
	limits := g.config.LimitsFor(symbol)

	if qty.Sign() <= 0 {
		return Approved, errs.New(errs.User, "risk.CheckOrder", fmt.Errorf("order quantity must be positive, got %s", qty))
	}
	if qty.GreaterThan(limits.MaxOrderQty) {
		return Approved, errs.New(errs.User, "risk.CheckOrder", fmt.Errorf("%s: quantity %s exceeds max %s", symbol, qty, limits.MaxOrderQty))
	}

	var notional decimal.Decimal
	hasNotional := params.LimitPrice != nil
	if hasNotional {
		notional = qty.Mul(*params.LimitPrice)
		if notional.GreaterThan(limits.MaxNotionalValue) {
			return Approved, errs.New(errs.User, "risk.CheckOrder", fmt.Errorf("%s: notional value %s exceeds max %s", symbol, notional, limits.MaxNotionalValue))
		}
	}

	now := time.Now()
	if err := g.checkRate(symbol, "day", now, day, limits.MaxTradesPerDay); err != nil {
		return Approved, err
	}
	if err := g.checkRate(symbol, "week", now, week, limits.MaxTradesPerWeek); err != nil {
		return Approved, err
	}
	if err := g.checkRate(symbol, "month", now, month, limits.MaxTradesPerMonth); err != nil {
		return Approved, err
	}

	if hasNotional && notional.GreaterThan(limits.ConfirmAboveNotional) {
		return RequiresConfirmation, nil
	}
	return Approved, nil
}

func (g *Guard) checkRate(symbol, period string, now time.Time, window time.Duration, max int) error {
	count := g.countWithin(symbol, now, window)
	if count >= max {
		return errs.New(errs.User, "risk.CheckOrder", fmt.Errorf("%s: %d trades in %s exceeds limit of %d", symbol, count, period, max))
	}
	return nil
}

func (g *Guard) countWithin(symbol string, now time.Time, window time.Duration) int {
	count := 0
	for _, t := range g.history[symbol] {
		if now.Sub(t) <= window {
			count++
		}
	}
	return count
}

// RecordSubmission records a successful order submission for symbol so
// subsequent rate checks see it.
func (g *Guard) RecordSubmission(symbol string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history[symbol] = append(g.history[symbol], time.Now())
}

// PruneStaleEntries drops submission history older than 30 days so the
// tracker does not grow unbounded across a long-running process.
func (g *Guard) PruneStaleEntries() {
	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := time.Now().Add(-30 * day)
	for symbol, times := range g.history {
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(g.history, symbol)
		} else {
			g.history[symbol] = kept
		}
	}
}
