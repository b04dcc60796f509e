package orderbook

import (
	"testing"

	"kraterm/models"
)

func TestChecksumIsDeterministic(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.ApplySnapshot(
		[]models.BookLevel{lvl(100, 1.5), lvl(99, 2)},
		[]models.BookLevel{lvl(101, 0.5), lvl(102, 3)},
	)

	c1 := b.Checksum(10)
	c2 := b.Checksum(10)
	if c1 != c2 {
		t.Fatalf("expected deterministic checksum, got %d then %d", c1, c2)
	}
}

func TestChecksumChangesWithLevels(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.ApplySnapshot([]models.BookLevel{lvl(100, 1)}, []models.BookLevel{lvl(101, 1)})
	before := b.Checksum(10)

	b.ApplyUpdate([]models.BookLevel{lvl(100, 2)}, nil)
	after := b.Checksum(10)

	if before == after {
		t.Fatal("expected checksum to change after quantity update")
	}
}

func TestChecksumTokenStripsPunctuationAndLeadingZeros(t *testing.T) {
	tok, err := ParseChecksumInput("0.00150000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tok != "150000" {
		t.Fatalf("expected stripped token '150000', got %q", tok)
	}
}

func TestVerifyChecksumDetectsMismatch(t *testing.T) {
	b := New("BTC/USD", 1000)
	b.ApplySnapshot([]models.BookLevel{lvl(100, 1)}, []models.BookLevel{lvl(101, 1)})

	if !b.VerifyChecksum(10, b.Checksum(10)) {
		t.Fatal("expected checksum to verify against itself")
	}
	if b.VerifyChecksum(10, 0xdeadbeef) {
		t.Fatal("expected mismatch against an arbitrary checksum")
	}
}
