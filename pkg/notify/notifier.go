package notify

import (
	"context"
	"log/slog"
)

// Push is one push-delivery attempt for a single recipient. Recording
// the notification row is the caller's job; Pusher only hands the
// message to a delivery channel.
type Push struct {
	NotificationID string         `json:"notificationId"`
	FamilyID       string         `json:"familyId"`
	SeniorID       string         `json:"seniorId,omitempty"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Payload        map[string]any `json:"payload,omitempty"`
}

// Pusher attempts best-effort delivery of one push message.
type Pusher interface {
	Push(ctx context.Context, msg Push) error
}

// LogPusher writes pushes to the log instead of delivering them. Used
// in development and as the fallback when no broker is configured.
type LogPusher struct{}

func (LogPusher) Push(_ context.Context, msg Push) error {
	slog.Info("push notification", "familyId", msg.FamilyID, "type", msg.Type, "title", msg.Title)
	return nil
}
