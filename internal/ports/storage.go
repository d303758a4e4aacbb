package ports

import (
	"context"
	"time"

	"github.com/stoik/phishcatch/internal/domain"
)

// PasswordHashStore is the content-addressed store of enterprise password digests
type PasswordHashStore interface {
	// SavePasswordHash upserts on Hash: a newer save for the same digest overwrites the older one
	SavePasswordHash(ctx context.Context, record *domain.PasswordHashRecord) error
	// GetPasswordHash returns nil, nil when no record exists
	GetPasswordHash(ctx context.Context, hash domain.ContentHash) (*domain.PasswordHashRecord, error)
	DeletePasswordHash(ctx context.Context, hash domain.ContentHash) error
}

// DomHashStore persists structural fingerprints of enterprise login pages
type DomHashStore interface {
	SaveDomHash(ctx context.Context, record *domain.DomHashRecord) error
	// FindDomHashes returns every domain that saved this fingerprint
	FindDomHashes(ctx context.Context, hash domain.ContentHash) ([]domain.DomHashRecord, error)
}

// UsernameStore persists usernames typed on enterprise pages
type UsernameStore interface {
	SaveUsername(ctx context.Context, record *domain.UsernameRecord) error
}

// NotificationStore holds the id -> reuse event associations of displayed notifications
type NotificationStore interface {
	PutNotification(ctx context.Context, record *domain.NotificationRecord) error
	// GetNotification returns nil, nil when no record exists
	GetNotification(ctx context.Context, id string) (*domain.NotificationRecord, error)
	// DeleteNotification returns domain.ErrNotFound when no record exists
	DeleteNotification(ctx context.Context, id string) error
	ListNotifications(ctx context.Context) ([]domain.NotificationRecord, error)
	// DeleteNotificationsBefore removes records created before cutoff and returns them
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) ([]domain.NotificationRecord, error)
}

// Storage defines the contract for persisting every record the engine owns
type Storage interface {
	PasswordHashStore
	DomHashStore
	UsernameStore
	NotificationStore

	// Lifecycle
	Close() error
}
