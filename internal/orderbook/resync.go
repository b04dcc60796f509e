package orderbook

import (
	"sync"
	"time"

	"kraterm/internal/metrics"
	"kraterm/logger"
)

// ResyncPolicy enforces the cooldown between resync requests for a
// single symbol, so a persistently mismatching book does not hammer the
// exchange with repeated resubscribe requests. Whether to give up and
// leave the book stale instead of resyncing again is Book.MarkChecksumFailure's
// decision, not this policy's; ResyncPolicy only ever decides how often.
type ResyncPolicy struct {
	symbol   string
	cooldown time.Duration

	mu          sync.Mutex
	lastAttempt time.Time
}

// NewResyncPolicy builds a policy for symbol.
func NewResyncPolicy(symbol string, cooldown time.Duration) *ResyncPolicy {
	return &ResyncPolicy{symbol: symbol, cooldown: cooldown}
}

// Decision is what the connection manager should do about a checksum
// mismatch that has not yet exceeded Book's failure cap.
type Decision int

const (
	// DecisionWait means a resync was requested too recently; do
	// nothing until the cooldown elapses.
	DecisionWait Decision = iota
	// DecisionResync means resubscribe to the book channel for this
	// symbol to obtain a fresh snapshot.
	DecisionResync
)

// Evaluate returns what to do about a checksum mismatch at now.
func (p *ResyncPolicy) Evaluate(now time.Time) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lastAttempt.IsZero() && now.Sub(p.lastAttempt) < p.cooldown {
		return DecisionWait
	}

	p.lastAttempt = now
	logger.IncrementResync(p.symbol)
	metrics.IncrementResync(p.symbol)
	return DecisionResync
}

// Reset clears the cooldown after a resync succeeds.
func (p *ResyncPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastAttempt = time.Time{}
}
