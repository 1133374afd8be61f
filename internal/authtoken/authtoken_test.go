package authtoken

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m, err := NewManager(Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.Issue("fam_abc123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	subject, err := m.VerifySubject(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "fam_abc123" {
		t.Fatalf("subject = %q, want fam_abc123", subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewManager(Config{Secret: "secret-a"})
	verifier, _ := NewManager(Config{Secret: "secret-b"})

	token, err := issuer.Issue("fam_abc123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.VerifySubject(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m, _ := NewManager(Config{Secret: "test-secret", TTL: time.Nanosecond, Leeway: time.Nanosecond})
	token, err := m.Issue("fam_abc123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := m.VerifySubject(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, _ := NewManager(Config{Secret: "test-secret"})
	if _, err := m.VerifySubject("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
