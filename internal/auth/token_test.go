package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestTokens(ttl time.Duration) *TokenService {
	return NewTokenService(TokenConfig{Secret: []byte("test-secret"), TTL: ttl})
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	svc := newTestTokens(time.Hour)

	tok, err := svc.Issue("user-1", "a@x.com", RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", claims.UserID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("email = %q, want a@x.com", claims.Email)
	}
	if claims.Role != RolePatient {
		t.Errorf("role = %q, want PATIENT", claims.Role)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("missing iat/exp claims")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Errorf("ttl = %v, want 1h", got)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc := newTestTokens(-time.Minute)

	tok, err := svc.Issue("user-1", "a@x.com", RolePatient)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	svc := newTestTokens(time.Hour)
	other := NewTokenService(TokenConfig{Secret: []byte("other-secret"), TTL: time.Hour})

	tok, err := other.Issue("user-1", "a@x.com", RoleProvider)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("err = %v, want ErrTokenSignature", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	svc := newTestTokens(time.Hour)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := svc.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q) err = %v, want ErrTokenMalformed", tok, err)
		}
	}
}
