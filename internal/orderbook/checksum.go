package orderbook

import (
	"hash/crc32"
	"strings"

	"github.com/shopspring/decimal"
)

// Checksum computes the exchange's order book integrity checksum: the
// top depth asks then the top depth bids, each price and quantity
// rendered as a punctuation-stripped decimal string and concatenated,
// hashed with CRC32 (IEEE polynomial).
func (b *Book) Checksum(depth int) uint32 {
	var sb strings.Builder
	for i := 0; i < depth && i < len(b.Asks); i++ {
		sb.WriteString(checksumToken(b.Asks[i].Price))
		sb.WriteString(checksumToken(b.Asks[i].Qty))
	}
	for i := 0; i < depth && i < len(b.Bids); i++ {
		sb.WriteString(checksumToken(b.Bids[i].Price))
		sb.WriteString(checksumToken(b.Bids[i].Qty))
	}
	return crc32.ChecksumIEEE([]byte(sb.String()))
}

// checksumToken renders a decimal as its full-precision plain string
// with the decimal point removed and leading zeros stripped, matching
// the exchange's checksum input format.
func checksumToken(d decimal.Decimal) string {
	s := d.String()
	if d.Exponent() < 0 {
		// String drops trailing zeros; keep every fractional digit.
		s = d.StringFixed(-d.Exponent())
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	return s
}

// VerifyChecksum reports whether the book's current top-of-book state
// matches the exchange-supplied checksum.
func (b *Book) VerifyChecksum(depth int, expected uint32) bool {
	return b.Checksum(depth) == expected
}

// ParseChecksumInput is a test/debug helper that converts a raw numeric
// string (as seen on the wire, before decimal.Decimal parsing) directly
// into its checksum token form.
func ParseChecksumInput(raw string) (string, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", err
	}
	return checksumToken(d), nil
}
