package app

import (
	"fmt"

	"carelink/pkg/domain"
)

// NotificationPage is one page of a family member's notifications.
type NotificationPage struct {
	Items       []domain.Notification `json:"notifications"`
	Total       int                   `json:"total"`
	UnreadCount int                   `json:"unreadCount"`
}

// ListMyNotifications returns the caller's notifications, newest first.
func (a *App) ListMyNotifications(familyID string, unreadOnly bool, limit, offset int) (NotificationPage, error) {
	if limit <= 0 {
		limit = 20
	}
	items, total, err := a.store.ListNotifications(familyID, unreadOnly, limit, offset)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := a.store.CountUnreadNotifications(familyID)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("count unread notifications: %w", err)
	}
	return NotificationPage{Items: items, Total: total, UnreadCount: unread}, nil
}

// MarkNotificationRead flags one of the caller's notifications read.
// Another recipient's notification reads as missing rather than forbidden.
func (a *App) MarkNotificationRead(familyID, notificationID string) error {
	notification, found, err := a.store.GetNotification(notificationID)
	if err != nil {
		return fmt.Errorf("lookup notification: %w", err)
	}
	if !found || notification.FamilyID != familyID {
		return ErrNotificationNotFound
	}
	if err := a.store.MarkNotificationRead(notificationID, familyID); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// MarkAllNotificationsRead flags every unread notification read.
func (a *App) MarkAllNotificationsRead(familyID string) error {
	if err := a.store.MarkAllNotificationsRead(familyID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
