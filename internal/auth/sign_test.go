package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestSignIsDeterministic(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString(make([]byte, 32))
	postData := "nonce=1000000000000"

	sig1, err := sign(secret, "/0/private/GetWebSocketsToken", postData)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sig2, err := sign(secret, "/0/private/GetWebSocketsToken", postData)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if sig1 != sig2 {
		t.Fatalf("expected deterministic signature, got %q and %q", sig1, sig2)
	}
	if _, err := base64.StdEncoding.DecodeString(sig1); err != nil {
		t.Fatalf("expected valid base64 signature: %v", err)
	}
}

func TestSignRejectsInvalidBase64Secret(t *testing.T) {
	if _, err := sign("not-valid-base64!!!", "/0/private/GetWebSocketsToken", "nonce=1"); err == nil {
		t.Fatal("expected an error for invalid base64 secret")
	} else if !strings.Contains(err.Error(), "invalid base64") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSignChangesWithPath(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString(make([]byte, 32))
	sigA, _ := sign(secret, "/0/private/GetWebSocketsToken", "nonce=1")
	sigB, _ := sign(secret, "/0/private/AddOrder", "nonce=1")
	if sigA == sigB {
		t.Fatal("expected signature to depend on path")
	}
}
