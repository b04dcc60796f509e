package rpc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kraterm/internal/bus"
	"kraterm/models"
)

type fakeSender struct {
	lastPublic  any
	lastPrivate any
	sendErr     error
}

func (f *fakeSender) SendPublic(v any) error {
	f.lastPublic = v
	return f.sendErr
}

func (f *fakeSender) SendPrivate(v any) error {
	f.lastPrivate = v
	return f.sendErr
}

func TestSubscribeBookWaitsForMatchingReqID(t *testing.T) {
	fs := &fakeSender{}
	c := NewClient(fs, bus.New(4, 4), false)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- c.SubscribeBook(ctx, []string{"BTC/USD"}, 25)
	}()

	deadline := time.After(time.Second)
	var req models.SubscribeRequest
	for {
		if fs.lastPublic != nil {
			req = fs.lastPublic.(models.SubscribeRequest)
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscribe request never sent")
		case <-time.After(5 * time.Millisecond):
		}
	}

	success := true
	c.Handle("public", models.Envelope{Method: "subscribe", Success: &success, ReqID: &req.ReqID})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("SubscribeBook did not return after the ack was delivered")
	}
}

func TestSubscribeBookReturnsErrorOnRejection(t *testing.T) {
	fs := &fakeSender{}
	c := NewClient(fs, bus.New(4, 4), false)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- c.SubscribeBook(ctx, []string{"BTC/USD"}, 25)
	}()

	deadline := time.After(time.Second)
	var req models.SubscribeRequest
	for {
		if fs.lastPublic != nil {
			req = fs.lastPublic.(models.SubscribeRequest)
			break
		}
		select {
		case <-deadline:
			t.Fatal("subscribe request never sent")
		case <-time.After(5 * time.Millisecond):
		}
	}

	failure := false
	c.Handle("public", models.Envelope{Method: "subscribe", Success: &failure, Error: "symbol unavailable", ReqID: &req.ReqID})

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error for a rejected subscribe")
		}
	case <-time.After(time.Second):
		t.Fatal("SubscribeBook did not return after the rejection was delivered")
	}
}

func TestHandleForwardsUncorrelatedTickerToBus(t *testing.T) {
	fs := &fakeSender{}
	b := bus.New(4, 4)
	c := NewClient(fs, b, false)

	payload, err := json.Marshal(models.TickerData{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c.Handle("public", models.Envelope{Channel: string(models.ChannelTicker), Type: "update", Data: payload})

	select {
	case msg := <-b.Messages():
		if msg.Kind != bus.MessageTicker {
			t.Fatalf("expected MessageTicker, got %v", msg.Kind)
		}
	default:
		t.Fatal("expected a ticker message to be forwarded to the bus")
	}
}

func TestPlaceOrderGeneratesClOrdIDWhenMissing(t *testing.T) {
	fs := &fakeSender{}
	c := NewClient(fs, bus.New(4, 4), false)

	done := make(chan struct {
		res *models.AddOrderResult
		err error
	}, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		res, err := c.PlaceOrder(ctx, models.AddOrderParams{Symbol: "BTC/USD"})
		done <- struct {
			res *models.AddOrderResult
			err error
		}{res, err}
	}()

	deadline := time.After(time.Second)
	var req models.AddOrderRequest
	for {
		if fs.lastPrivate != nil {
			req = fs.lastPrivate.(models.AddOrderRequest)
			break
		}
		select {
		case <-deadline:
			t.Fatal("add_order request never sent")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if req.Params.ClOrdID == "" {
		t.Fatal("expected a generated ClOrdID")
	}

	result, err := json.Marshal(models.AddOrderResponse{Success: true, Result: &models.AddOrderResult{OrderID: "OID-1"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c.Handle("private", models.Envelope{Method: "add_order", ReqID: &req.ReqID, Result: result})

	select {
	case out := <-done:
		if out.err != nil {
			t.Fatalf("unexpected error: %v", out.err)
		}
		if out.res.OrderID != "OID-1" {
			t.Fatalf("expected order id OID-1, got %q", out.res.OrderID)
		}
	case <-time.After(time.Second):
		t.Fatal("PlaceOrder did not return after the response was delivered")
	}
}
