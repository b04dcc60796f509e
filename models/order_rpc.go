package models

import "github.com/shopspring/decimal"

// OrderSide is the direction of an order.
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// OrderType names how an order should be matched.
type OrderType string

const (
	OrderTypeLimit             OrderType = "limit"
	OrderTypeMarket            OrderType = "market"
	OrderTypeStopLoss          OrderType = "stop-loss"
	OrderTypeStopLossLimit     OrderType = "stop-loss-limit"
	OrderTypeTakeProfit        OrderType = "take-profit"
	OrderTypeTakeProfitLimit   OrderType = "take-profit-limit"
)

// TimeInForce controls how long an order remains active.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "gtc"
	TimeInForceGTD TimeInForce = "gtd"
	TimeInForceIOC TimeInForce = "ioc"
)

// AddOrderParams is the params object of an add_order RPC call. Token is
// carried as a RedactedToken so it never appears in plain text if the
// request is logged.
type AddOrderParams struct {
	OrderType   OrderType       `json:"order_type"`
	Side        OrderSide       `json:"side"`
	Symbol      string          `json:"symbol"`
	OrderQty    decimal.Decimal `json:"order_qty"`
	LimitPrice  *decimal.Decimal `json:"limit_price,omitempty"`
	TimeInForce TimeInForce     `json:"time_in_force,omitempty"`
	ExpireTime  string          `json:"expire_time,omitempty"`
	PostOnly    *bool           `json:"post_only,omitempty"`
	ReduceOnly  *bool           `json:"reduce_only,omitempty"`
	ClOrdID     string          `json:"cl_ord_id,omitempty"`
	OrderUserRef *int64         `json:"order_userref,omitempty"`
	Validate    *bool           `json:"validate,omitempty"`
	Token       RedactedToken   `json:"token"`
}

// AddOrderRequest is a one-shot add_order RPC request, correlated to its
// response by ReqID.
type AddOrderRequest struct {
	Method string         `json:"method"`
	Params AddOrderParams `json:"params"`
	ReqID  uint64         `json:"req_id,omitempty"`
}

// NewAddOrderRequest builds an add_order request. Validation of which
// fields a given OrderType requires is the caller's (RPC layer's)
// responsibility.
func NewAddOrderRequest(params AddOrderParams, reqID uint64) AddOrderRequest {
	return AddOrderRequest{Method: "add_order", Params: params, ReqID: reqID}
}

// AddOrderResult carries the exchange-assigned identifiers for a
// successfully placed order.
type AddOrderResult struct {
	OrderID      string `json:"order_id"`
	ClOrdID      string `json:"cl_ord_id,omitempty"`
	OrderUserRef *int64 `json:"order_userref,omitempty"`
}

// AddOrderResponse is the exchange's reply to an AddOrderRequest.
type AddOrderResponse struct {
	Method  string          `json:"method"`
	Success bool            `json:"success"`
	Result  *AddOrderResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	TimeIn  string          `json:"time_in"`
	TimeOut string          `json:"time_out"`
	ReqID   uint64          `json:"req_id,omitempty"`
}

// CancelOrderParams is the params object of a cancel_order RPC call.
type CancelOrderParams struct {
	OrderID []string      `json:"order_id,omitempty"`
	ClOrdID []string      `json:"cl_ord_id,omitempty"`
	Token   RedactedToken `json:"token"`
}

// CancelOrderRequest is a one-shot cancel_order RPC request.
type CancelOrderRequest struct {
	Method string            `json:"method"`
	Params CancelOrderParams `json:"params"`
	ReqID  uint64            `json:"req_id,omitempty"`
}

// NewCancelOrderRequest builds a cancel_order request for one or more
// order IDs.
func NewCancelOrderRequest(token string, orderIDs []string, reqID uint64) CancelOrderRequest {
	return CancelOrderRequest{
		Method: "cancel_order",
		Params: CancelOrderParams{OrderID: orderIDs, Token: RedactedToken(token)},
		ReqID:  reqID,
	}
}

// CancelOrderResult reports which orders were accepted for cancellation.
type CancelOrderResult struct {
	OrderID string `json:"order_id"`
}

// CancelOrderResponse is the exchange's reply to a CancelOrderRequest.
type CancelOrderResponse struct {
	Method  string               `json:"method"`
	Success bool                 `json:"success"`
	Result  []CancelOrderResult  `json:"result,omitempty"`
	Error   string               `json:"error,omitempty"`
	TimeIn  string               `json:"time_in"`
	TimeOut string               `json:"time_out"`
	ReqID   uint64               `json:"req_id,omitempty"`
}
