package app

import (
	"fmt"
	"net/mail"
	"strings"

	"carelink/internal/util"
	"carelink/pkg/auth"
	"carelink/pkg/domain"
)

const minPasswordLength = 6

// Signup registers a family member account and returns a session token.
func (a *App) Signup(email, name, password string) (domain.FamilyMember, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.FamilyMember{}, "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.FamilyMember{}, "", fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return domain.FamilyMember{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, found, err := a.store.GetFamilyMemberByEmail(email); err != nil {
		return domain.FamilyMember{}, "", fmt.Errorf("lookup family member: %w", err)
	} else if found {
		return domain.FamilyMember{}, "", ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.FamilyMember{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := a.now().UTC()
	member := domain.FamilyMember{
		ID:           util.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveFamilyMember(member); err != nil {
		return domain.FamilyMember{}, "", fmt.Errorf("save family member: %w", err)
	}
	token, err := a.tokens.Issue(member.ID)
	if err != nil {
		return domain.FamilyMember{}, "", fmt.Errorf("issue token: %w", err)
	}
	return member, token, nil
}

// Login verifies credentials and returns a session token.
func (a *App) Login(email, password string) (domain.FamilyMember, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.FamilyMember{}, "", ErrInvalidCredentials
	}
	member, found, err := a.store.GetFamilyMemberByEmail(email)
	if err != nil {
		return domain.FamilyMember{}, "", fmt.Errorf("lookup family member: %w", err)
	}
	if !found || !auth.CheckPassword(password, member.PasswordHash) {
		return domain.FamilyMember{}, "", ErrInvalidCredentials
	}
	token, err := a.tokens.Issue(member.ID)
	if err != nil {
		return domain.FamilyMember{}, "", fmt.Errorf("issue token: %w", err)
	}
	return member, token, nil
}

// Me returns the authenticated family member's own record.
func (a *App) Me(familyID string) (domain.FamilyMember, error) {
	member, found, err := a.store.GetFamilyMemberByID(familyID)
	if err != nil {
		return domain.FamilyMember{}, fmt.Errorf("lookup family member: %w", err)
	}
	if !found {
		return domain.FamilyMember{}, ErrFamilyNotFound
	}
	return member, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}
