package app

import (
	"errors"
	"testing"
)

func TestSignupLoginRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	member, token, err := env.app.Signup("child@example.com", "김민지", "secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if token == "" {
		t.Fatal("signup must issue a token")
	}
	subject, err := env.app.tokens.VerifySubject(token)
	if err != nil || subject != member.ID {
		t.Fatalf("token subject = %q (%v), want %q", subject, err, member.ID)
	}

	if _, _, err := env.app.Signup("child@example.com", "다른 사람", "secret123"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, _, err := env.app.Login("child@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	logged, _, err := env.app.Login("child@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != member.ID {
		t.Fatalf("login returned %q, want %q", logged.ID, member.ID)
	}
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.app.Signup("not-an-email", "이름", "secret123"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, _, err := env.app.Signup("a@example.com", "이름", "short"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestRegisterSeniorLinksCreator(t *testing.T) {
	env := newTestEnv(t)
	member, _, err := env.app.Signup("child@example.com", "김민지", "secret123")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	senior, err := env.app.RegisterSenior(member.ID, SeniorInput{Name: "김영희"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if senior.InviteCode == "" {
		t.Fatal("invite code must be assigned at registration")
	}
	link, found, err := env.store.GetFamilyLink(senior.ID, member.ID)
	if err != nil || !found {
		t.Fatalf("creator link missing: %v", err)
	}
	if !link.IsPrimary {
		t.Fatal("creator must be the primary caregiver")
	}
}

func TestLinkSeniorByInviteCode(t *testing.T) {
	env := newTestEnv(t)
	creator, _, _ := env.app.Signup("a@example.com", "김민지", "secret123")
	other, _, _ := env.app.Signup("b@example.com", "김철수", "secret123")
	senior, err := env.app.RegisterSenior(creator.ID, SeniorInput{Name: "김영희"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	linked, err := env.app.LinkSenior(other.ID, senior.InviteCode, "SON")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if linked.ID != senior.ID {
		t.Fatalf("linked senior %q, want %q", linked.ID, senior.ID)
	}
	if _, err := env.app.LinkSenior(other.ID, senior.InviteCode, "SON"); !errors.Is(err, ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}
	if _, err := env.app.LinkSenior(other.ID, "bogus-code", ""); !errors.Is(err, ErrInviteCodeInvalid) {
		t.Fatalf("expected ErrInviteCodeInvalid, got %v", err)
	}

	seniors, err := env.app.ListMySeniors(other.ID)
	if err != nil || len(seniors) != 1 {
		t.Fatalf("ListMySeniors = %v, %v", seniors, err)
	}
}
