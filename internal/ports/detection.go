package ports

import (
	"context"

	"github.com/stoik/phishcatch/internal/domain"
)

// DomainClassifier decides whether a host is enterprise, dangerous or neither.
// An error means the source is unavailable; callers treat it as Ignored.
type DomainClassifier interface {
	Classify(ctx context.Context, host string) (domain.DomainType, error)
}

// AlertSender delivers alerts to the remote alerting endpoint.
// No acknowledgment beyond the transport result is expected.
type AlertSender interface {
	SendAlert(ctx context.Context, alert domain.AlertContent) error
}

// NotificationSurface displays interactive notifications to the user
type NotificationSurface interface {
	// Create displays n and returns the id assigned by the surface
	Create(ctx context.Context, n domain.Notification) (string, error)
	// Clear removes a notification; clearing an unknown id is not an error
	Clear(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Notification, error)
}
