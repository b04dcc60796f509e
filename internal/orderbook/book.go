// Package orderbook maintains a per-symbol incremental order book fed by
// snapshot and update messages from the exchange's book channel,
// verifying its own integrity against the exchange's CRC32 checksum on
// every update and requesting a resync when the two diverge.
package orderbook

import (
	"sort"

	"github.com/shopspring/decimal"

	"kraterm/models"
)

// Level is a single resting price level.
type Level struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// Book is one symbol's reconstructed order book. Bids are kept in
// strictly descending price order and asks in strictly ascending price
// order; every mutation goes through binary-search insertion so the
// invariant never needs a post-hoc sort.
type Book struct {
	Symbol string
	Bids   []Level
	Asks   []Level

	maxLevelsPerSide int

	stale            bool
	checksumFailures int
}

// New creates an empty book for symbol, bounded to maxLevelsPerSide
// resting levels on each side.
func New(symbol string, maxLevelsPerSide int) *Book {
	return &Book{Symbol: symbol, maxLevelsPerSide: maxLevelsPerSide}
}

// Stale reports whether the last checksum verification failed and a
// resync has not yet repaired the book.
func (b *Book) Stale() bool {
	return b.stale
}

// ChecksumFailures returns how many consecutive checksum mismatches this
// book has accumulated since its last successful resync.
func (b *Book) ChecksumFailures() int {
	return b.checksumFailures
}

// ApplySnapshot replaces the book's contents wholesale, as delivered by
// the initial book channel message or a resync response. Levels are
// sorted once up front; subsequent updates use binary-search insertion.
func (b *Book) ApplySnapshot(bids, asks []models.BookLevel) {
	b.Bids = toLevels(bids)
	b.Asks = toLevels(asks)
	sort.Slice(b.Bids, func(i, j int) bool { return b.Bids[i].Price.GreaterThan(b.Bids[j].Price) })
	sort.Slice(b.Asks, func(i, j int) bool { return b.Asks[i].Price.LessThan(b.Asks[j].Price) })
	b.truncate()
	b.stale = false
	b.checksumFailures = 0
}

func toLevels(in []models.BookLevel) []Level {
	out := make([]Level, len(in))
	for i, lvl := range in {
		out[i] = Level{Price: lvl.Price, Qty: lvl.Qty}
	}
	return out
}

// ApplyUpdate merges an incremental update into the book: a zero
// quantity at a price removes that level, any other quantity inserts or
// replaces it in place, keeping strict sort order without a full re-sort.
func (b *Book) ApplyUpdate(bids, asks []models.BookLevel) {
	for _, lvl := range bids {
		b.Bids = applySide(b.Bids, Level{Price: lvl.Price, Qty: lvl.Qty}, true)
	}
	for _, lvl := range asks {
		b.Asks = applySide(b.Asks, Level{Price: lvl.Price, Qty: lvl.Qty}, false)
	}
	b.truncate()
}

// applySide inserts, replaces, or removes lvl within side, which is kept
// sorted descending when bidSide is true and ascending otherwise.
func applySide(side []Level, lvl Level, bidSide bool) []Level {
	idx := sort.Search(len(side), func(i int) bool {
		if bidSide {
			return side[i].Price.LessThanOrEqual(lvl.Price)
		}
		return side[i].Price.GreaterThanOrEqual(lvl.Price)
	})

	found := idx < len(side) && side[idx].Price.Equal(lvl.Price)

	if lvl.Qty.IsZero() {
		if found {
			side = append(side[:idx], side[idx+1:]...)
		}
		return side
	}

	if found {
		side[idx].Qty = lvl.Qty
		return side
	}

	side = append(side, Level{})
	copy(side[idx+1:], side[idx:])
	side[idx] = lvl
	return side
}

func (b *Book) truncate() {
	if b.maxLevelsPerSide <= 0 {
		return
	}
	if len(b.Bids) > b.maxLevelsPerSide {
		b.Bids = b.Bids[:b.maxLevelsPerSide]
	}
	if len(b.Asks) > b.maxLevelsPerSide {
		b.Asks = b.Asks[:b.maxLevelsPerSide]
	}
}

// BestBid returns the highest bid price level, or false if the book has
// no bids.
func (b *Book) BestBid() (Level, bool) {
	if len(b.Bids) == 0 {
		return Level{}, false
	}
	return b.Bids[0], true
}

// BestAsk returns the lowest ask price level, or false if the book has
// no asks.
func (b *Book) BestAsk() (Level, bool) {
	if len(b.Asks) == 0 {
		return Level{}, false
	}
	return b.Asks[0], true
}

// MarkChecksumFailure records a checksum mismatch, marking the book
// stale and returning whether the failure count has exceeded the
// caller-supplied limit (at which point no further resync is requested
// and the book stays stale until a snapshot arrives). A failure count
// equal to limit still resyncs; only the (limit+1)th consecutive failure
// exceeds it.
func (b *Book) MarkChecksumFailure(limit int) (exceeded bool) {
	b.stale = true
	b.checksumFailures++
	return b.checksumFailures > limit
}

// MarkResynced clears the stale flag and failure counter after a
// successful resync (ApplySnapshot already clears these; MarkResynced
// exists for callers that resync via a fresh snapshot fetched
// out-of-band).
func (b *Book) MarkResynced() {
	b.stale = false
	b.checksumFailures = 0
}
