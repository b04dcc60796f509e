package agentbridge

import (
	"context"
	"testing"
	"time"

	"kraterm/internal/bus"
	"kraterm/models"
)

func tickerFor(symbol string) models.TickerData {
	return models.TickerData{Symbol: symbol}
}

func TestHandleStartForwardsReadyAndPlaceOrderFromStdout(t *testing.T) {
	b := bus.New(8, 8)
	script := `printf '{"type":"ready"}\n{"type":"place_order","symbol":"BTC/USD","side":"buy","order_type":"market","qty":"1"}\n'`
	h := NewHandle([]string{"sh", "-c", script}, 5*time.Second, 0, b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	sawReady := false
	sawDecision := false
	deadline := time.After(2 * time.Second)
	for !sawReady || !sawDecision {
		select {
		case msg := <-b.Messages():
			switch msg.Kind {
			case bus.MessageAgentReady:
				sawReady = true
			case bus.MessageAgentDecision:
				sawDecision = true
			}
		case <-deadline:
			t.Fatalf("timed out waiting for ready=%v decision=%v", sawReady, sawDecision)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the script exited")
	}
}

func TestHandleStartForwardsStreamDeltaAndTokenUsageFromStdout(t *testing.T) {
	b := bus.New(8, 8)
	script := `printf '{"type":"stream_delta","delta":"hel"}\n{"type":"token_usage","input_tokens":12,"output_tokens":34}\n'`
	h := NewHandle([]string{"sh", "-c", script}, 5*time.Second, 0, b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	sawDelta := false
	var usage models.AgentTokenUsage
	sawUsage := false
	deadline := time.After(2 * time.Second)
	for !sawDelta || !sawUsage {
		select {
		case msg := <-b.Messages():
			switch msg.Kind {
			case bus.MessageAgentOutput:
				if s, ok := msg.Payload.(string); ok && s == "hel" {
					sawDelta = true
				}
			case bus.MessageAgentTokenUse:
				if u, ok := msg.Payload.(models.AgentTokenUsage); ok {
					usage = u
					sawUsage = true
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for delta=%v usage=%v", sawDelta, sawUsage)
		}
	}
	if usage.InputTokens != 12 || usage.OutputTokens != 34 {
		t.Fatalf("unexpected token usage: %+v", usage)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after the script exited")
	}
}

func TestHandleStartWithEmptyCommandIsNoOp(t *testing.T) {
	h := NewHandle(nil, time.Second, 0, bus.New(1, 1))
	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("expected no error for an empty command, got %v", err)
	}
}

func TestSendTickerThrottlesPerSymbol(t *testing.T) {
	b := bus.New(1, 1)
	h := NewHandle([]string{"sh", "-c", "cat >/dev/null"}, time.Hour, 0, b)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Start(ctx)

	deadline := time.After(time.Second)
	for {
		h.mu.Lock()
		running := h.running
		h.mu.Unlock()
		if running {
			break
		}
		select {
		case <-deadline:
			t.Fatal("process never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	h.SendTicker(tickerFor("BTC/USD"))
	first := h.lastTickerSent["BTC/USD"]
	h.SendTicker(tickerFor("BTC/USD"))
	second := h.lastTickerSent["BTC/USD"]
	if !first.Equal(second) {
		t.Fatal("expected the second call within the throttle window to be a no-op")
	}
}
