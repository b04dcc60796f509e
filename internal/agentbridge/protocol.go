package agentbridge

import "kraterm/models"

// InboundKind discriminates a JSON line read from the agent's stdout.
type InboundKind string

const (
	InboundOutput      InboundKind = "output"
	InboundReady       InboundKind = "ready"
	InboundError       InboundKind = "error"
	InboundStreamDelta InboundKind = "stream_delta"
	InboundStreamEnd   InboundKind = "stream_end"
	InboundTokenUsage  InboundKind = "token_usage"
	InboundPlaceOrder  InboundKind = "place_order"
	InboundCancelOrder InboundKind = "cancel_order"
)

// Inbound is one line read from the agent subprocess's stdout, tagged by
// Type the way original_source's AgentToTui enum is tagged on the wire.
type Inbound struct {
	Type         InboundKind      `json:"type"`
	Line         string           `json:"line,omitempty"`
	Message      string           `json:"message,omitempty"`
	Delta        string           `json:"delta,omitempty"`
	InputTokens  int64            `json:"input_tokens,omitempty"`
	OutputTokens int64            `json:"output_tokens,omitempty"`
	Symbol       string           `json:"symbol,omitempty"`
	Side         models.OrderSide `json:"side,omitempty"`
	OrderType    models.OrderType `json:"order_type,omitempty"`
	Qty          string           `json:"qty,omitempty"`
	Price        string           `json:"price,omitempty"`
	OrderID      string           `json:"order_id,omitempty"`
	ClOrdID      string           `json:"cl_ord_id,omitempty"`
}

// OutboundKind discriminates a JSON line written to the agent's stdin.
type OutboundKind string

const (
	OutboundUserMessage   OutboundKind = "user_message"
	OutboundTicker        OutboundKind = "ticker_update"
	OutboundTrade         OutboundKind = "trade_update"
	OutboundBalance       OutboundKind = "balance_update"
	OutboundExecution     OutboundKind = "execution_update"
	OutboundTokenState    OutboundKind = "token_state"
	OutboundOrderResponse OutboundKind = "order_response"
	OutboundActivePairs   OutboundKind = "active_pairs"
	OutboundRiskLimits    OutboundKind = "risk_limits"
	OutboundShutdown      OutboundKind = "shutdown"
)

// Outbound is one line written to the agent subprocess's stdin.
type Outbound struct {
	Type         OutboundKind           `json:"type"`
	Content      string                 `json:"content,omitempty"`
	Ticker       *models.TickerData     `json:"ticker,omitempty"`
	Trades       []models.TradeData     `json:"trades,omitempty"`
	Balances     []models.BalanceData   `json:"balances,omitempty"`
	Executions   []models.ExecutionData `json:"executions,omitempty"`
	State        string                 `json:"state,omitempty"`
	Success      bool                   `json:"success,omitempty"`
	OrderID      string                 `json:"order_id,omitempty"`
	ClOrdID      string                 `json:"cl_ord_id,omitempty"`
	OrderUserRef *int64                 `json:"order_userref,omitempty"`
	Error        string                 `json:"error,omitempty"`
	Pairs        []string               `json:"pairs,omitempty"`
	Description  string                 `json:"description,omitempty"`
}
