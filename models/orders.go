package models

import "github.com/shopspring/decimal"

// L3OrderEntry is a single resting order in the level-3 (individual
// orders) book. Event is empty on the initial snapshot and one of
// "add", "modify", or "delete" on subsequent updates.
type L3OrderEntry struct {
	Event       string          `json:"event,omitempty"`
	OrderID     string          `json:"order_id"`
	LimitPrice  decimal.Decimal `json:"limit_price"`
	OrderQty    decimal.Decimal `json:"order_qty"`
	Timestamp   string          `json:"timestamp"`
}

// L3BookData is the level-3 order book payload for a single symbol.
type L3BookData struct {
	Symbol    string         `json:"symbol"`
	Bids      []L3OrderEntry `json:"bids"`
	Asks      []L3OrderEntry `json:"asks"`
	Checksum  uint32         `json:"checksum"`
	Timestamp string         `json:"timestamp"`
}
