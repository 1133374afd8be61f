package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carelink/internal/util"
	"carelink/pkg/domain"
	"carelink/pkg/store"
)

// SeniorInput carries registration fields for a senior.
type SeniorInput struct {
	Name        string
	BirthDate   *time.Time
	Gender      string
	Phone       string
	ProfileNote string
	Role        string
}

// RegisterSenior creates a senior and links the registering family
// member as the primary caregiver.
func (a *App) RegisterSenior(familyID string, input SeniorInput) (domain.Senior, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.Senior{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	now := a.now().UTC()
	senior := domain.Senior{
		ID:          util.NewID(),
		Name:        input.Name,
		BirthDate:   input.BirthDate,
		Gender:      strings.TrimSpace(input.Gender),
		Phone:       strings.TrimSpace(input.Phone),
		ProfileNote: strings.TrimSpace(input.ProfileNote),
		InviteCode:  uuid.NewString(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.store.SaveSenior(senior); err != nil {
		return domain.Senior{}, fmt.Errorf("save senior: %w", err)
	}
	link := domain.FamilyLink{
		ID:        util.NewID(),
		SeniorID:  senior.ID,
		FamilyID:  familyID,
		Role:      roleOrDefault(input.Role),
		IsPrimary: true,
		CreatedAt: now,
	}
	if err := a.store.CreateFamilyLink(link); err != nil {
		return domain.Senior{}, fmt.Errorf("link registering family member: %w", err)
	}
	return senior, nil
}

// LinkSenior joins the family member to a senior by invite code.
func (a *App) LinkSenior(familyID, inviteCode, role string) (domain.Senior, error) {
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return domain.Senior{}, fmt.Errorf("%w: invite code required", ErrInvalidInput)
	}
	senior, found, err := a.store.GetSeniorByInviteCode(inviteCode)
	if err != nil {
		return domain.Senior{}, fmt.Errorf("lookup invite code: %w", err)
	}
	if !found {
		return domain.Senior{}, ErrInviteCodeInvalid
	}
	link := domain.FamilyLink{
		ID:        util.NewID(),
		SeniorID:  senior.ID,
		FamilyID:  familyID,
		Role:      roleOrDefault(role),
		CreatedAt: a.now().UTC(),
	}
	if err := a.store.CreateFamilyLink(link); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return domain.Senior{}, ErrAlreadyLinked
		}
		return domain.Senior{}, fmt.Errorf("create family link: %w", err)
	}
	return senior, nil
}

// ListMySeniors returns every senior the family member is linked to.
func (a *App) ListMySeniors(familyID string) ([]domain.Senior, error) {
	links, err := a.store.ListFamilyLinksByFamily(familyID)
	if err != nil {
		return nil, fmt.Errorf("list family links: %w", err)
	}
	seniors := make([]domain.Senior, 0, len(links))
	for _, link := range links {
		senior, found, err := a.store.GetSenior(link.SeniorID)
		if err != nil {
			return nil, fmt.Errorf("lookup senior: %w", err)
		}
		if found {
			seniors = append(seniors, senior)
		}
	}
	return seniors, nil
}

// GetSeniorDetail returns one linked senior.
func (a *App) GetSeniorDetail(familyID, seniorID string) (domain.Senior, error) {
	senior, err := a.requireLinkedSenior(familyID, seniorID)
	if err != nil {
		return domain.Senior{}, err
	}
	return senior, nil
}

// UpdateSeniorNote replaces the free-text profile note.
func (a *App) UpdateSeniorNote(familyID, seniorID, note string) (domain.Senior, error) {
	senior, err := a.requireLinkedSenior(familyID, seniorID)
	if err != nil {
		return domain.Senior{}, err
	}
	senior.ProfileNote = strings.TrimSpace(note)
	senior.UpdatedAt = a.now().UTC()
	if err := a.store.SaveSenior(senior); err != nil {
		return domain.Senior{}, fmt.Errorf("save senior: %w", err)
	}
	return senior, nil
}

// requireLinkedSenior checks existence first, then the caller's link.
func (a *App) requireLinkedSenior(familyID, seniorID string) (domain.Senior, error) {
	senior, found, err := a.store.GetSenior(seniorID)
	if err != nil {
		return domain.Senior{}, fmt.Errorf("lookup senior: %w", err)
	}
	if !found {
		return domain.Senior{}, ErrSeniorNotFound
	}
	if _, linked, err := a.store.GetFamilyLink(seniorID, familyID); err != nil {
		return domain.Senior{}, fmt.Errorf("lookup family link: %w", err)
	} else if !linked {
		return domain.Senior{}, ErrNotLinked
	}
	return senior, nil
}

func roleOrDefault(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return "CHILD"
	}
	return role
}
