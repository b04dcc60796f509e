package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBookDataRoundTrip(t *testing.T) {
	data := BookData{
		Symbol: "BTC/USD",
		Bids: []BookLevel{
			{Price: decimal.NewFromFloat(50000.1), Qty: decimal.NewFromFloat(1.5)},
		},
		Asks: []BookLevel{
			{Price: decimal.NewFromFloat(50001.2), Qty: decimal.NewFromFloat(0.75)},
		},
		Checksum: 123456,
	}

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out BookData
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Bids[0].Price.Equal(data.Bids[0].Price) || out.Checksum != data.Checksum {
		t.Fatalf("round trip mismatch: %+v != %+v", out, data)
	}
}

func TestRedactedTokenNeverPrintsValue(t *testing.T) {
	tok := RedactedToken("super-secret-token")
	if s := tok.String(); s != "[REDACTED]" {
		t.Fatalf("expected redaction, got %q", s)
	}
	if s := (&AddOrderParams{Token: tok}).Token.String(); s != "[REDACTED]" {
		t.Fatalf("expected redaction inside struct, got %q", s)
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"super-secret-token"` {
		t.Fatalf("expected transparent JSON encoding, got %s", raw)
	}
}

func TestNewBookSubscribeRequest(t *testing.T) {
	req := NewBookSubscribeRequest([]string{"BTC/USD"}, int(BookDepth25), 7)
	if req.Method != "subscribe" || req.Params.Channel != string(ChannelBook) || req.Params.Depth != 25 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestAddOrderRequestOmitsTokenFromNothingButSerializesIt(t *testing.T) {
	price := decimal.NewFromInt(50000)
	req := NewAddOrderRequest(AddOrderParams{
		OrderType:  OrderTypeLimit,
		Side:       SideBuy,
		Symbol:     "BTC/USD",
		OrderQty:   decimal.NewFromFloat(0.01),
		LimitPrice: &price,
		Token:      RedactedToken("tok"),
	}, 42)

	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	params := decoded["params"].(map[string]any)
	if params["token"] != "tok" {
		t.Fatalf("expected token to serialize as plain string, got %v", params["token"])
	}
}
