package models

import "github.com/shopspring/decimal"

// TradeData is a single executed trade reported on the public trade
// channel.
type TradeData struct {
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Qty       decimal.Decimal `json:"qty"`
	OrdType   string          `json:"ord_type"`
	TradeID   uint64          `json:"trade_id"`
	Timestamp string          `json:"timestamp"`
}

// CandleData is a single OHLC bar pushed on the ohlc channel.
type CandleData struct {
	Symbol    string          `json:"symbol"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Trades    int64           `json:"trades"`
	Volume    decimal.Decimal `json:"volume"`
	VWAP      decimal.Decimal `json:"vwap"`
	IntervalBegin string      `json:"interval_begin"`
	Interval  int             `json:"interval"`
	Timestamp string          `json:"timestamp"`
}
