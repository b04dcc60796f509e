package models

import "github.com/shopspring/decimal"

// AgentUpdate is one line of the line-delimited JSON protocol written to
// the agent subprocess's stdin: a throttled snapshot of market and
// account state for one symbol.
type AgentUpdate struct {
	Type      string           `json:"type"`
	Symbol    string           `json:"symbol"`
	Timestamp string           `json:"timestamp"`
	BestBid   *decimal.Decimal `json:"best_bid,omitempty"`
	BestAsk   *decimal.Decimal `json:"best_ask,omitempty"`
	Last      *decimal.Decimal `json:"last,omitempty"`
	Position  *decimal.Decimal `json:"position,omitempty"`
	Balance   *decimal.Decimal `json:"balance,omitempty"`
}

// AgentDecision is one line of the line-delimited JSON protocol read from
// the agent subprocess's stdout: an intent to act, translated by the RPC
// layer into an add_order or cancel_order call.
type AgentDecision struct {
	Type       string           `json:"type"`
	Symbol     string           `json:"symbol"`
	Side       OrderSide        `json:"side,omitempty"`
	OrderType  OrderType        `json:"order_type,omitempty"`
	Qty        *decimal.Decimal `json:"qty,omitempty"`
	LimitPrice *decimal.Decimal `json:"limit_price,omitempty"`
	OrderID    string           `json:"order_id,omitempty"`
	ClOrdID    string           `json:"cl_ord_id,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// AgentTokenUsage is an optional accounting line the agent may emit so the
// bridge can attribute a dollar cost to its subprocess's language-model
// calls.
type AgentTokenUsage struct {
	Type         string `json:"type"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}
