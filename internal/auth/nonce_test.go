package auth

import (
	"sync"
	"testing"
)

func TestNonceSourceMonotonicUnderStaleClock(t *testing.T) {
	n := NewNonceSource(1000)

	first := n.Next(1000)
	second := n.Next(999) // clock stepped backward
	if second <= first {
		t.Fatalf("expected strictly increasing nonces, got %d then %d", first, second)
	}
}

func TestNonceSourceMonotonicUnderConcurrency(t *testing.T) {
	n := NewNonceSource(1)
	const goroutines = 50
	results := make([]int64, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = n.Next(1)
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, goroutines)
	for _, v := range results {
		if seen[v] {
			t.Fatalf("duplicate nonce %d", v)
		}
		seen[v] = true
	}
}
