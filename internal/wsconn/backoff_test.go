package wsconn

import "testing"

func TestCalculateBackoffCapsAtMaxDelay(t *testing.T) {
	d := calculateBackoff(10)
	if d < maxDelay*8/10 || d > maxDelay*12/10 {
		t.Fatalf("expected backoff near maxDelay with jitter, got %v", d)
	}
}

func TestCalculateBackoffGrowsWithRetryCount(t *testing.T) {
	// Jitter makes exact values random, but the jittered ranges do not
	// overlap: retry 0 lies in [0.8s, 1.2s] and retry 4 in [12.8s, 19.2s],
	// so retry 0 always comes out below retry 4.
	low := calculateBackoff(0)
	high := calculateBackoff(4)
	if low >= high {
		t.Fatalf("expected backoff to grow with retry count: low=%v high=%v", low, high)
	}
}

func TestBackoffForSkipsDelayOnCredentialsUpdate(t *testing.T) {
	if d := backoffFor(CauseCredentialsUpdated, 5); d != 0 {
		t.Fatalf("expected zero delay on credentials update, got %v", d)
	}
	if d := backoffFor(CauseTokenExpired, 5); d != 0 {
		t.Fatalf("expected zero delay on token expiry, got %v", d)
	}
}

func TestBackoffForBacksOffOnReadError(t *testing.T) {
	if d := backoffFor(CauseReadError, 0); d <= 0 {
		t.Fatalf("expected positive backoff for a read error, got %v", d)
	}
}
