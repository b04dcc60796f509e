package models

import "github.com/shopspring/decimal"

// Fee is a single fee line item charged on an execution.
type Fee struct {
	Asset string          `json:"asset"`
	Qty   decimal.Decimal `json:"qty"`
}

// Trigger carries the trigger parameters echoed back on a stop or
// trailing order's execution report.
type Trigger struct {
	Reference   string           `json:"reference,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	PriceType   string           `json:"price_type,omitempty"`
	ActualPrice *decimal.Decimal `json:"actual_price,omitempty"`
	PeakPrice   *decimal.Decimal `json:"peak_price,omitempty"`
	LastPrice   *decimal.Decimal `json:"last_price,omitempty"`
	Status      string           `json:"status,omitempty"`
	Timestamp   string           `json:"timestamp,omitempty"`
}

// ExecutionData is a single order status change or fill on the
// authenticated executions channel. Most fields are optional because the
// exchange only populates what changed since the last report.
type ExecutionData struct {
	OrderID      string  `json:"order_id"`
	OrderUserRef *int64  `json:"order_userref,omitempty"`
	ClOrdID      string  `json:"cl_ord_id,omitempty"`
	ExecID       string  `json:"exec_id,omitempty"`
	TradeID      *int64  `json:"trade_id,omitempty"`

	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	OrderType   string `json:"order_type"`
	OrderQty    decimal.Decimal `json:"order_qty"`
	OrderStatus string `json:"order_status"`
	TimeInForce string `json:"time_in_force,omitempty"`

	LimitPrice   *decimal.Decimal `json:"limit_price,omitempty"`
	AvgPrice     *decimal.Decimal `json:"avg_price,omitempty"`
	LastPrice    *decimal.Decimal `json:"last_price,omitempty"`
	CashOrderQty *decimal.Decimal `json:"cash_order_qty,omitempty"`

	ExecType string           `json:"exec_type"`
	LastQty  *decimal.Decimal `json:"last_qty,omitempty"`
	CumQty   *decimal.Decimal `json:"cum_qty,omitempty"`
	CumCost  *decimal.Decimal `json:"cum_cost,omitempty"`
	Cost     *decimal.Decimal `json:"cost,omitempty"`

	Fees []Fee `json:"fees,omitempty"`

	Timestamp     string `json:"timestamp"`
	EffectiveTime string `json:"effective_time,omitempty"`

	PostOnly   *bool `json:"post_only,omitempty"`
	ReduceOnly *bool `json:"reduce_only,omitempty"`
	Amended    *bool `json:"amended,omitempty"`

	Triggers *Trigger `json:"triggers,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}
