// Package models defines the Kraken WebSocket v2 wire types shared by the
// connection manager, order book engine, RPC layer, and agent bridge.
package models

import "fmt"

// RedactedToken wraps an authentication token so that accidental use of
// %v or %+v in a log statement never leaks it. It marshals transparently
// as a plain JSON string.
type RedactedToken string

func (t RedactedToken) String() string {
	return "[REDACTED]"
}

func (t RedactedToken) GoString() string {
	return "[REDACTED]"
}

func (t RedactedToken) Format(f fmt.State, verb rune) {
	fmt.Fprint(f, "[REDACTED]")
}

// Channel names a subscribable Kraken v2 WebSocket channel by its wire
// value.
type Channel string

const (
	ChannelBook        Channel = "book"
	ChannelTicker      Channel = "ticker"
	ChannelOrders      Channel = "level3"
	ChannelCandles     Channel = "ohlc"
	ChannelTrade       Channel = "trade"
	ChannelInstruments Channel = "instrument"
	ChannelExecutions  Channel = "executions"
	ChannelStatus      Channel = "status"
	ChannelHeartbeat   Channel = "heartbeat"
)

// Envelope is the outer shape common to every channel push: a channel
// name, a message type ("snapshot" or "update"), and a raw payload that
// the caller decodes according to Channel.
type Envelope struct {
	Channel string          `json:"channel"`
	Type    string          `json:"type,omitempty"`
	Data    RawData         `json:"data,omitempty"`
	Method  string          `json:"method,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`
	ReqID   *uint64         `json:"req_id,omitempty"`
	Result  RawData         `json:"result,omitempty"`
	Extra   map[string]any  `json:"-"`
}

// RawData defers decoding of the data/result field until the caller knows
// the concrete channel type.
type RawData []byte

// UnmarshalJSON stores the raw bytes for later decoding.
func (r *RawData) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

// MarshalJSON round-trips the stored bytes verbatim.
func (r RawData) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// SubscribeParams is the params object of a subscribe/unsubscribe request
// for the plain channels (ticker, trade, instrument, level3, ohlc).
type SubscribeParams struct {
	Channel string         `json:"channel"`
	Symbol  []string       `json:"symbol,omitempty"`
	Depth   int            `json:"depth,omitempty"`
	Token   RedactedToken  `json:"token,omitempty"`
}

// SubscribeRequest is a `subscribe` method call.
type SubscribeRequest struct {
	Method string          `json:"method"`
	Params SubscribeParams `json:"params"`
	ReqID  uint64          `json:"req_id,omitempty"`
}

// NewSubscribeRequest builds a subscribe request for a plain channel.
func NewSubscribeRequest(channel Channel, symbols []string, reqID uint64) SubscribeRequest {
	return SubscribeRequest{
		Method: "subscribe",
		Params: SubscribeParams{Channel: string(channel), Symbol: symbols},
		ReqID:  reqID,
	}
}

// NewBookSubscribeRequest builds a subscribe request for the book channel
// with an explicit depth (10, 25, 100, 500, or 1000 per the exchange).
func NewBookSubscribeRequest(symbols []string, depth int, reqID uint64) SubscribeRequest {
	return SubscribeRequest{
		Method: "subscribe",
		Params: SubscribeParams{Channel: string(ChannelBook), Symbol: symbols, Depth: depth},
		ReqID:  reqID,
	}
}

// NewExecutionsSubscribeRequest builds a subscribe request for the
// authenticated executions channel.
func NewExecutionsSubscribeRequest(token string, reqID uint64) SubscribeRequest {
	return SubscribeRequest{
		Method: "subscribe",
		Params: SubscribeParams{Channel: string(ChannelExecutions), Token: RedactedToken(token)},
		ReqID:  reqID,
	}
}

// NewBalancesSubscribeRequest builds a subscribe request for the
// authenticated balances channel.
func NewBalancesSubscribeRequest(token string, reqID uint64) SubscribeRequest {
	return SubscribeRequest{
		Method: "subscribe",
		Params: SubscribeParams{Channel: "balances", Token: RedactedToken(token)},
		ReqID:  reqID,
	}
}

// UnsubscribeRequest is an `unsubscribe` method call, structurally
// identical to SubscribeRequest.
type UnsubscribeRequest struct {
	Method string          `json:"method"`
	Params SubscribeParams `json:"params"`
	ReqID  uint64          `json:"req_id,omitempty"`
}

// NewUnsubscribeRequest builds an unsubscribe request mirroring a prior
// subscribe request's channel and symbols.
func NewUnsubscribeRequest(channel Channel, symbols []string, reqID uint64) UnsubscribeRequest {
	return UnsubscribeRequest{
		Method: "unsubscribe",
		Params: SubscribeParams{Channel: string(channel), Symbol: symbols},
		ReqID:  reqID,
	}
}

// PingRequest tests connection liveness; the server replies with a pong
// of the same method name.
type PingRequest struct {
	Method string `json:"method"`
	ReqID  uint64 `json:"req_id,omitempty"`
}

// NewPingRequest builds a ping request.
func NewPingRequest(reqID uint64) PingRequest {
	return PingRequest{Method: "ping", ReqID: reqID}
}

// PongResponse is the server's reply to a PingRequest.
type PongResponse struct {
	Method  string `json:"method"`
	TimeIn  string `json:"time_in"`
	TimeOut string `json:"time_out"`
	ReqID   uint64 `json:"req_id,omitempty"`
}

// HeartbeatMessage is a periodic liveness push with no payload.
type HeartbeatMessage struct {
	Channel string `json:"channel"`
}

// StatusData carries system status pushed on the status channel.
type StatusData struct {
	APIVersion   string `json:"api_version"`
	ConnectionID uint64 `json:"connection_id"`
	System       string `json:"system"`
	Version      string `json:"version"`
}
