package orderbook

import (
	"testing"
	"time"
)

func TestResyncPolicyWaitsWithinCooldown(t *testing.T) {
	p := NewResyncPolicy("BTC/USD", 5*time.Second)
	now := time.Now()

	if d := p.Evaluate(now); d != DecisionResync {
		t.Fatalf("expected first evaluation to resync, got %v", d)
	}
	if d := p.Evaluate(now.Add(time.Second)); d != DecisionWait {
		t.Fatalf("expected second evaluation within cooldown to wait, got %v", d)
	}
}

func TestResyncPolicyResyncsAgainAfterCooldownElapses(t *testing.T) {
	p := NewResyncPolicy("BTC/USD", time.Second)
	now := time.Now()

	if d := p.Evaluate(now); d != DecisionResync {
		t.Fatalf("expected first evaluation to resync, got %v", d)
	}
	if d := p.Evaluate(now.Add(2 * time.Second)); d != DecisionResync {
		t.Fatalf("expected evaluation past cooldown to resync again, got %v", d)
	}
}

func TestResyncPolicyResetClearsCooldown(t *testing.T) {
	p := NewResyncPolicy("BTC/USD", time.Hour)
	now := time.Now()
	p.Evaluate(now)
	p.Reset()

	if d := p.Evaluate(now); d != DecisionResync {
		t.Fatalf("expected reset to allow another resync attempt, got %v", d)
	}
}
