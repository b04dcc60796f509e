package creds

import "testing"

func TestHandleReplaceZeroesPrevious(t *testing.T) {
	h := NewHandle(Credentials{APIKey: "key-1", APISecret: "secret-1"})
	if got := h.Get(); got.APIKey != "key-1" {
		t.Fatalf("unexpected initial credentials: %+v", got)
	}

	h.Replace(Credentials{APIKey: "key-2", APISecret: "secret-2"})
	if got := h.Get(); got.APIKey != "key-2" || got.APISecret != "secret-2" {
		t.Fatalf("unexpected credentials after replace: %+v", got)
	}
}

func TestZeroClearsSecret(t *testing.T) {
	c := Credentials{APIKey: "key", APISecret: "secret"}
	c.Zero()
	if c.APIKey != "" || c.APISecret != "" {
		t.Fatalf("expected fields cleared, got %+v", c)
	}
}
