package models

import "github.com/shopspring/decimal"

// InstrumentData carries reference data for every tradable asset and
// pair, pushed once as a snapshot and again whenever the exchange
// changes listing metadata.
type InstrumentData struct {
	Assets []AssetInfo `json:"assets"`
	Pairs  []PairInfo  `json:"pairs"`
}

// AssetInfo describes a single currency.
type AssetInfo struct {
	ID               string          `json:"id"`
	Status           string          `json:"status"`
	Precision        int             `json:"precision"`
	PrecisionDisplay int             `json:"precision_display"`
	Borrowable       bool            `json:"borrowable"`
	CollateralValue  decimal.Decimal `json:"collateral_value"`
	MarginRate       decimal.Decimal `json:"margin_rate"`
}

// PairInfo describes a single tradable symbol.
type PairInfo struct {
	Symbol            string          `json:"symbol"`
	Base              string          `json:"base"`
	Quote             string          `json:"quote"`
	Status            string          `json:"status"`
	QtyPrecision      int             `json:"qty_precision"`
	QtyIncrement      decimal.Decimal `json:"qty_increment"`
	PricePrecision    int             `json:"price_precision"`
	PriceIncrement    decimal.Decimal `json:"price_increment"`
	CostPrecision     int             `json:"cost_precision"`
	CostMin           decimal.Decimal `json:"cost_min"`
	QtyMin            decimal.Decimal `json:"qty_min"`
	Marginable        bool            `json:"marginable"`
	MarginInitial     *decimal.Decimal `json:"margin_initial,omitempty"`
	PositionLimitLong  *uint64        `json:"position_limit_long,omitempty"`
	PositionLimitShort *uint64       `json:"position_limit_short,omitempty"`
	HasIndex          bool            `json:"has_index"`
}
