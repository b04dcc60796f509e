package models

import "github.com/shopspring/decimal"

// BookLevel is a single price level on one side of the order book.
type BookLevel struct {
	Price decimal.Decimal `json:"price"`
	Qty   decimal.Decimal `json:"qty"`
}

// BookData is the payload of a book channel snapshot or update for a
// single trading pair. Snapshots carry the full requested depth; updates
// carry only the levels that changed, with a Qty of zero meaning the
// level was removed.
type BookData struct {
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Checksum  uint32      `json:"checksum"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// BookDepth enumerates the depths the exchange accepts for a book
// subscription.
type BookDepth int

const (
	BookDepth10   BookDepth = 10
	BookDepth25   BookDepth = 25
	BookDepth100  BookDepth = 100
	BookDepth500  BookDepth = 500
	BookDepth1000 BookDepth = 1000
)
