package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncrementBusDropAdvancesCounter(t *testing.T) {
	Init("")
	before := testutil.ToFloat64(busDrops)
	IncrementBusDrop()
	if after := testutil.ToFloat64(busDrops); after != before+1 {
		t.Fatalf("expected bus drop counter to advance by 1, got %v -> %v", before, after)
	}
}

func TestIncrementChecksumFailureIsPerSymbol(t *testing.T) {
	Init("")
	IncrementChecksumFailure("BTC/USD")
	if got := testutil.ToFloat64(checksumFailures.WithLabelValues("BTC/USD")); got < 1 {
		t.Fatalf("expected at least one checksum failure recorded for BTC/USD, got %v", got)
	}
	if got := testutil.ToFloat64(checksumFailures.WithLabelValues("ETH/USD")); got != 0 {
		t.Fatalf("expected ETH/USD to be unaffected, got %v", got)
	}
}

func TestSetBookStaleTogglesGauge(t *testing.T) {
	Init("")
	SetBookStale("SOL/USD", true)
	if got := testutil.ToFloat64(bookStale.WithLabelValues("SOL/USD")); got != 1 {
		t.Fatalf("expected stale gauge to be 1, got %v", got)
	}
	SetBookStale("SOL/USD", false)
	if got := testutil.ToFloat64(bookStale.WithLabelValues("SOL/USD")); got != 0 {
		t.Fatalf("expected stale gauge to be 0, got %v", got)
	}
}
