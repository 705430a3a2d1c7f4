package application

import (
	"context"

	"github.com/google/uuid"
)

// NotificationKind classifies user-facing notifications.
type NotificationKind string

const (
	NotificationSessionExpired NotificationKind = "session_expired"
	NotificationTimeLow        NotificationKind = "time_low"
)

// Notifier is the notification port. Fire and forget: implementations
// deliver best-effort and never propagate failure into a domain transition.
type Notifier interface {
	Notify(ctx context.Context, ownerID uuid.UUID, kind NotificationKind, payload map[string]any)
}

// NoopNotifier drops every notification.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, uuid.UUID, NotificationKind, map[string]any) {}
