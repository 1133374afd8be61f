package app

import (
	"errors"
	"testing"
	"time"

	"carelink/internal/util"
	"carelink/pkg/domain"
)

func seedNotification(t *testing.T, env *testEnv, familyID string) domain.Notification {
	t.Helper()
	notification := domain.Notification{
		ID:        util.NewID(),
		FamilyID:  familyID,
		Type:      domain.NotificationHealthAlert,
		Title:     "알림",
		Body:      "본문",
		CreatedAt: time.Now().UTC(),
	}
	if err := env.store.CreateNotification(notification); err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return notification
}

func TestMarkNotificationRead(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	member := env.seedFamily(t, senior.ID, "child@example.com")
	notification := seedNotification(t, env, member.ID)

	if err := env.app.MarkNotificationRead(member.ID, notification.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	items := env.notificationsFor(t, member.ID)
	if len(items) != 1 || !items[0].IsRead {
		t.Fatalf("notification not flagged read: %+v", items)
	}
}

func TestMarkNotificationReadUnknownID(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	member := env.seedFamily(t, senior.ID, "child@example.com")

	err := env.app.MarkNotificationRead(member.ID, "missing")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("err = %v, want ErrNotificationNotFound", err)
	}
}

func TestMarkNotificationReadScopedToRecipient(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	owner := env.seedFamily(t, senior.ID, "owner@example.com")
	other := env.seedFamily(t, senior.ID, "other@example.com")
	notification := seedNotification(t, env, owner.ID)

	err := env.app.MarkNotificationRead(other.ID, notification.ID)
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("err = %v, want ErrNotificationNotFound", err)
	}
	items := env.notificationsFor(t, owner.ID)
	if len(items) != 1 || items[0].IsRead {
		t.Fatalf("foreign caller must not flip the read flag: %+v", items)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	env := newTestEnv(t)
	senior := env.seedSenior(t, "김영희")
	member := env.seedFamily(t, senior.ID, "child@example.com")
	seedNotification(t, env, member.ID)
	seedNotification(t, env, member.ID)

	if err := env.app.MarkAllNotificationsRead(member.ID); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	page, err := env.app.ListMyNotifications(member.ID, false, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.UnreadCount != 0 || page.Total != 2 {
		t.Fatalf("unread = %d total = %d, want 0 and 2", page.UnreadCount, page.Total)
	}
}
