package auth

import (
	"strings"
	"testing"
)

func TestBcryptHashesAreSalted(t *testing.T) {
	h := BcryptHasher{Cost: 4} // min cost keeps the test fast

	h1, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same plaintext are identical")
	}
}

func TestBcryptVerify(t *testing.T) {
	h := BcryptHasher{Cost: 4}

	hash, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !h.Verify(hash, "secret") {
		t.Error("correct password rejected")
	}
	if h.Verify(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestBcryptOverlongPassword(t *testing.T) {
	h := BcryptHasher{Cost: 4}

	// bcrypt rejects inputs over 72 bytes
	if _, err := h.Hash(strings.Repeat("x", 100)); err == nil {
		t.Error("expected error for 100-byte password")
	}
}
