package rpc

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"kraterm/internal/bus"
	"kraterm/models"
)

func TestPlaceOrderSimulatesFillAgainstTicker(t *testing.T) {
	fs := &fakeSender{}
	b := bus.New(8, 4)
	c := NewClient(fs, b, true)

	c.sim.observeTicker(models.TickerData{
		Symbol: "BTC/USD",
		Bid:    decimal.NewFromInt(29999),
		Ask:    decimal.NewFromInt(30001),
	})

	result, err := c.PlaceOrder(context.Background(), models.AddOrderParams{
		OrderType: models.OrderTypeMarket,
		Side:      models.SideBuy,
		Symbol:    "BTC/USD",
		OrderQty:  decimal.NewFromFloat(0.1),
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if result.OrderID == "" {
		t.Fatal("expected a synthesized order ID")
	}
	if fs.lastPrivate != nil {
		t.Fatal("expected simulated order not to reach the sender")
	}

	msg := <-b.Messages()
	if msg.Kind != bus.MessageExecution {
		t.Fatalf("expected an execution message, got %s", msg.Kind)
	}
	exec, ok := msg.Payload.(models.ExecutionData)
	if !ok || !exec.AvgPrice.Equal(decimal.NewFromInt(30001)) {
		t.Fatalf("expected a fill at the ask price, got %+v", exec)
	}
}

func TestPlaceOrderSimulationFailsWithoutTicker(t *testing.T) {
	c := NewClient(&fakeSender{}, bus.New(4, 4), true)

	_, err := c.PlaceOrder(context.Background(), models.AddOrderParams{
		OrderType: models.OrderTypeMarket,
		Side:      models.SideBuy,
		Symbol:    "ETH/USD",
		OrderQty:  decimal.NewFromFloat(1),
	})
	if err == nil {
		t.Fatal("expected an error with no ticker data available")
	}
}

func TestCancelOrderSimulationAlwaysSucceeds(t *testing.T) {
	c := NewClient(&fakeSender{}, bus.New(4, 4), true)

	resp, err := c.CancelOrder(context.Background(), "", []string{"SIM-1"})
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected simulated cancel to succeed")
	}
}
