package crypto

import (
	"encoding/hex"
	"testing"
)

func TestNewOpaqueToken(t *testing.T) {
	token, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken() unexpected error: %v", err)
	}

	raw, err := hex.DecodeString(token)
	if err != nil {
		t.Fatalf("NewOpaqueToken() not valid hex: %v", err)
	}
	if len(raw) != opaqueTokenBytes {
		t.Errorf("NewOpaqueToken() decoded length = %d, want %d", len(raw), opaqueTokenBytes)
	}
}

func TestNewOpaqueTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewOpaqueToken()
		if err != nil {
			t.Fatalf("NewOpaqueToken() unexpected error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("some-token")
	b := Fingerprint("some-token")
	if a != b {
		t.Errorf("Fingerprint() not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("Fingerprint() length = %d, want 64 hex chars", len(a))
	}
}

func TestFingerprintDistinctInputs(t *testing.T) {
	if Fingerprint("token-a") == Fingerprint("token-b") {
		t.Error("Fingerprint() collided on distinct inputs")
	}
}

func TestFingerprintDiffersFromInput(t *testing.T) {
	token, err := NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken() unexpected error: %v", err)
	}
	if Fingerprint(token) == token {
		t.Error("Fingerprint() returned the raw token")
	}
}
