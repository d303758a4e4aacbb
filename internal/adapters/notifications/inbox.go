package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stoik/phishcatch/internal/domain"
)

// Inbox is a local ports.NotificationSurface polled by the extension popup.
// Notifications stay until cleared, which matches RequireInteraction.
type Inbox struct {
	mu    sync.RWMutex
	items map[string]domain.Notification
	now   func() time.Time
}

func NewInbox() *Inbox {
	return &Inbox{
		items: make(map[string]domain.Notification),
		now:   time.Now,
	}
}

// Create stores n under a fresh id
func (i *Inbox) Create(ctx context.Context, n domain.Notification) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	n.ID = uuid.NewString()
	n.CreatedAt = i.now().UTC()
	n.Buttons = append([]string(nil), n.Buttons...)

	i.mu.Lock()
	defer i.mu.Unlock()

	i.items[n.ID] = n
	return n.ID, nil
}

// Clear removes a notification; unknown ids are ignored
func (i *Inbox) Clear(ctx context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	delete(i.items, id)
	return nil
}

// List returns the displayed notifications, oldest first
func (i *Inbox) List(ctx context.Context) ([]domain.Notification, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	list := make([]domain.Notification, 0, len(i.items))
	for _, n := range i.items {
		list = append(list, n)
	}
	sort.Slice(list, func(a, b int) bool {
		if list[a].CreatedAt.Equal(list[b].CreatedAt) {
			return list[a].ID < list[b].ID
		}
		return list[a].CreatedAt.Before(list[b].CreatedAt)
	})
	return list, nil
}
