package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"

	"kraterm/models"
)

func lvl(price, qty float64) models.BookLevel {
	return models.BookLevel{Price: decimal.NewFromFloat(price), Qty: decimal.NewFromFloat(qty)}
}

func TestApplySnapshotSortsBidsDescendingAsksAscending(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.ApplySnapshot(
		[]models.BookLevel{lvl(100, 1), lvl(102, 1), lvl(101, 1)},
		[]models.BookLevel{lvl(105, 1), lvl(103, 1), lvl(104, 1)},
	)

	if !b.Bids[0].Price.Equal(decimal.NewFromInt(102)) {
		t.Fatalf("expected best bid 102, got %s", b.Bids[0].Price)
	}
	if !b.Asks[0].Price.Equal(decimal.NewFromInt(103)) {
		t.Fatalf("expected best ask 103, got %s", b.Asks[0].Price)
	}
}

func TestApplyUpdateInsertsAndRemoves(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.ApplySnapshot([]models.BookLevel{lvl(100, 1), lvl(99, 1)}, []models.BookLevel{lvl(101, 1)})

	b.ApplyUpdate([]models.BookLevel{lvl(100.5, 2)}, nil)
	if len(b.Bids) != 3 || !b.Bids[0].Price.Equal(decimal.NewFromFloat(100.5)) {
		t.Fatalf("expected inserted level at top, got %+v", b.Bids)
	}

	b.ApplyUpdate([]models.BookLevel{lvl(100, 0)}, nil)
	for _, l := range b.Bids {
		if l.Price.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("expected level at 100 to be removed, got %+v", b.Bids)
		}
	}
}

func TestApplyUpdateMaintainsSortOrder(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.ApplySnapshot(nil, []models.BookLevel{lvl(101, 1), lvl(103, 1)})
	b.ApplyUpdate(nil, []models.BookLevel{lvl(102, 1)})

	for i := 1; i < len(b.Asks); i++ {
		if !b.Asks[i].Price.GreaterThan(b.Asks[i-1].Price) {
			t.Fatalf("asks not strictly ascending: %+v", b.Asks)
		}
	}
}

func TestTruncateDropsFarEnd(t *testing.T) {
	b := New("BTC/USD", 2)
	b.ApplySnapshot([]models.BookLevel{lvl(100, 1), lvl(99, 1), lvl(98, 1)}, nil)
	if len(b.Bids) != 2 {
		t.Fatalf("expected truncation to 2 levels, got %d", len(b.Bids))
	}
	if !b.Bids[len(b.Bids)-1].Price.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("expected the farthest level (98) dropped, got %+v", b.Bids)
	}
}

func TestMarkChecksumFailureExceedsOnlyPastLimit(t *testing.T) {
	b := New("BTC/USD", 1000)
	if b.MarkChecksumFailure(3) {
		t.Fatal("first failure should not exceed limit")
	}
	if b.MarkChecksumFailure(3) {
		t.Fatal("second failure should not exceed limit")
	}
	if b.MarkChecksumFailure(3) {
		t.Fatal("third failure should not exceed limit, only reach it")
	}
	if !b.MarkChecksumFailure(3) {
		t.Fatal("fourth failure should exceed the limit")
	}
	if !b.Stale() {
		t.Fatal("expected book to be marked stale")
	}
}

func TestApplySnapshotClearsStaleness(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.MarkChecksumFailure(3)
	b.ApplySnapshot([]models.BookLevel{lvl(100, 1)}, []models.BookLevel{lvl(101, 1)})
	if b.Stale() || b.ChecksumFailures() != 0 {
		t.Fatal("expected snapshot to clear staleness")
	}
}
