package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTManager_GenerateVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	userID := uuid.New()

	token, err := m.Generate(userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	got, err := m.UserID(token)
	if err != nil {
		t.Fatalf("user id: %v", err)
	}
	if got != userID {
		t.Fatalf("user id = %s, want %s", got, userID)
	}

	exp, err := m.Expiry(token)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	if d := time.Until(exp); d <= 0 || d > time.Minute {
		t.Fatalf("unexpected expiry in %s", d)
	}

	other, err := m.Generate(userID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if other == token {
		t.Fatalf("tokens for the same user must differ")
	}
}

func TestJWTManager_RejectsForeignAndExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	foreign := NewJWTManager("other", time.Minute)

	token, _ := foreign.Generate(uuid.New())
	if _, err := m.Verify(token); err == nil {
		t.Fatalf("token signed with another key must be rejected")
	}

	expired := NewJWTManager("secret", -time.Minute)
	token, _ = expired.Generate(uuid.New())
	if _, err := m.Verify(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=abc", nil)
	if tok, err := ExtractToken(r); err != nil || tok != "abc" {
		t.Fatalf("query token = %q, %v", tok, err)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "bearer xyz")
	if tok, err := ExtractToken(r); err != nil || tok != "xyz" {
		t.Fatalf("header token = %q, %v", tok, err)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Basic xyz")
	if _, err := ExtractTokenFromHeader(r); err == nil {
		t.Fatalf("non-bearer header must be rejected")
	}
}
