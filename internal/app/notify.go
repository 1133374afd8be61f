package app

import (
	"context"
	"fmt"
	"log/slog"

	"carelink/internal/util"
	"carelink/pkg/domain"
	"carelink/pkg/notify"
)

// dispatch fans one alert out to every family member linked to the
// senior. Each recipient is an isolated unit of work: the notification
// row is always recorded, push delivery is best effort, and a failure
// for one recipient never blocks the others.
func (a *App) dispatch(ctx context.Context, seniorID string, ntype domain.NotificationType, title, body string, payload map[string]any) {
	links, err := a.store.ListFamilyLinksBySenior(seniorID)
	if err != nil {
		slog.Error("dispatch: list family links failed", "senior_id", seniorID, "type", ntype, "err", err)
		return
	}
	for _, link := range links {
		notification := domain.Notification{
			ID:        util.NewID(),
			FamilyID:  link.FamilyID,
			SeniorID:  seniorID,
			Type:      ntype,
			Title:     title,
			Body:      body,
			Payload:   payload,
			CreatedAt: a.now().UTC(),
		}
		if err := a.store.CreateNotification(notification); err != nil {
			slog.Error("dispatch: record notification failed", "family_id", link.FamilyID, "type", ntype, "err", err)
			continue
		}
		if err := a.pusher.Push(ctx, notify.Push{
			NotificationID: notification.ID,
			FamilyID:       link.FamilyID,
			SeniorID:       seniorID,
			Type:           string(ntype),
			Title:          title,
			Body:           body,
			Payload:        payload,
		}); err != nil {
			slog.Warn("dispatch: push delivery failed", "family_id", link.FamilyID, "type", ntype, "err", err)
		}
	}
}

// sosAlert dispatches the SOS specialization with a human label for
// the subtype and optional geolocation in the payload.
func (a *App) sosAlert(ctx context.Context, senior domain.Senior, event domain.SosEvent) {
	label := sosLabel(event.Type)
	payload := map[string]any{"sosId": event.ID, "sosType": string(event.Type)}
	if event.Latitude != nil && event.Longitude != nil {
		payload["location"] = map[string]any{"lat": *event.Latitude, "lng": *event.Longitude}
	}
	a.dispatch(ctx, senior.ID, domain.NotificationSos,
		fmt.Sprintf("🚨 %s 어르신 %s", senior.Name, label),
		fmt.Sprintf("%s 어르신에게 %s 알림이 발생했습니다. 즉시 확인해주세요.", senior.Name, label),
		payload,
	)
}

func sosLabel(t domain.SosType) string {
	switch t {
	case domain.SosFall:
		return "낙상 감지"
	case domain.SosInactivity:
		return "장시간 미활동"
	default:
		return "긴급 SOS"
	}
}
