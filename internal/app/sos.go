package app

import (
	"context"
	"fmt"
	"strings"

	"carelink/internal/util"
	"carelink/pkg/domain"
)

// TriggerSos records an emergency event and fans an alert out to every
// linked family member.
func (a *App) TriggerSos(ctx context.Context, seniorID string, sosType domain.SosType, lat, lng *float64) (domain.SosEvent, error) {
	senior, found, err := a.store.GetSenior(seniorID)
	if err != nil {
		return domain.SosEvent{}, fmt.Errorf("lookup senior: %w", err)
	}
	if !found {
		return domain.SosEvent{}, ErrSeniorNotFound
	}
	if sosType == "" {
		sosType = domain.SosManual
	}
	switch sosType {
	case domain.SosManual, domain.SosFall, domain.SosInactivity:
	default:
		return domain.SosEvent{}, fmt.Errorf("%w: invalid sos type %q", ErrInvalidInput, sosType)
	}

	event := domain.SosEvent{
		ID:        util.NewID(),
		SeniorID:  seniorID,
		Type:      sosType,
		Latitude:  lat,
		Longitude: lng,
		CreatedAt: a.now().UTC(),
	}
	if err := a.store.CreateSosEvent(event); err != nil {
		return domain.SosEvent{}, fmt.Errorf("create sos event: %w", err)
	}

	a.sosAlert(ctx, senior, event)
	return event, nil
}

// ResolveSos marks an event handled. The transition happens once; a
// resolved event stays resolved.
func (a *App) ResolveSos(familyID, sosID, note string) (domain.SosEvent, error) {
	event, found, err := a.store.GetSosEvent(sosID)
	if err != nil {
		return domain.SosEvent{}, fmt.Errorf("lookup sos event: %w", err)
	}
	if !found {
		return domain.SosEvent{}, ErrSosNotFound
	}
	if _, err := a.requireLinkedSenior(familyID, event.SeniorID); err != nil {
		return domain.SosEvent{}, err
	}
	if event.Resolved {
		return domain.SosEvent{}, ErrSosResolved
	}

	resolvedAt := a.now().UTC()
	if err := a.store.ResolveSosEvent(sosID, familyID, resolvedAt, strings.TrimSpace(note)); err != nil {
		return domain.SosEvent{}, fmt.Errorf("resolve sos event: %w", err)
	}
	event.Resolved = true
	event.ResolvedAt = &resolvedAt
	event.ResolvedBy = familyID
	event.Note = strings.TrimSpace(note)
	return event, nil
}

// ListSosEvents returns a linked senior's recent events, newest first.
func (a *App) ListSosEvents(familyID, seniorID string, limit int) ([]domain.SosEvent, error) {
	if _, err := a.requireLinkedSenior(familyID, seniorID); err != nil {
		return nil, err
	}
	events, err := a.store.ListSosEvents(seniorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list sos events: %w", err)
	}
	return events, nil
}
