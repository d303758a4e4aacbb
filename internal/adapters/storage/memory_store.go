package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stoik/phishcatch/internal/domain"
)

type domHashKey struct {
	hash   domain.ContentHash
	domain string
}

type usernameKey struct {
	username string
	hostname string
}

// MemoryStore is an in-memory implementation of ports.Storage.
// Records do not survive a restart.
type MemoryStore struct {
	mu            sync.RWMutex
	passwords     map[domain.ContentHash]domain.PasswordHashRecord
	domHashes     map[domHashKey]domain.DomHashRecord
	usernames     map[usernameKey]domain.UsernameRecord
	notifications map[string]domain.NotificationRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		passwords:     make(map[domain.ContentHash]domain.PasswordHashRecord),
		domHashes:     make(map[domHashKey]domain.DomHashRecord),
		usernames:     make(map[usernameKey]domain.UsernameRecord),
		notifications: make(map[string]domain.NotificationRecord),
	}
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) SavePasswordHash(ctx context.Context, record *domain.PasswordHashRecord) error {
	if record == nil {
		return errors.New("password hash record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.passwords[record.Hash] = *record
	return nil
}

func (s *MemoryStore) GetPasswordHash(ctx context.Context, hash domain.ContentHash) (*domain.PasswordHashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.passwords[hash]
	if !exists {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) DeletePasswordHash(ctx context.Context, hash domain.ContentHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.passwords, hash)
	return nil
}

func (s *MemoryStore) SaveDomHash(ctx context.Context, record *domain.DomHashRecord) error {
	if record == nil {
		return errors.New("dom hash record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.domHashes[domHashKey{record.Hash, record.Domain}] = *record
	return nil
}

func (s *MemoryStore) FindDomHashes(ctx context.Context, hash domain.ContentHash) ([]domain.DomHashRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.DomHashRecord, 0)
	for key, record := range s.domHashes {
		if key.hash == hash {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Domain < records[j].Domain })
	return records, nil
}

func (s *MemoryStore) SaveUsername(ctx context.Context, record *domain.UsernameRecord) error {
	if record == nil {
		return errors.New("username record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.usernames[usernameKey{record.Username, record.Hostname}] = *record
	return nil
}

func (s *MemoryStore) PutNotification(ctx context.Context, record *domain.NotificationRecord) error {
	if record == nil {
		return errors.New("notification record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications[record.ID] = *record
	return nil
}

func (s *MemoryStore) GetNotification(ctx context.Context, id string) (*domain.NotificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.notifications[id]
	if !exists {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) DeleteNotification(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notifications[id]; !exists {
		return domain.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context) ([]domain.NotificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.NotificationRecord, 0, len(s.notifications))
	for _, record := range s.notifications {
		records = append(records, record)
	}
	sortNotifications(records)
	return records, nil
}

func (s *MemoryStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) ([]domain.NotificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]domain.NotificationRecord, 0)
	for id, record := range s.notifications {
		if record.CreatedAt.Before(cutoff) {
			removed = append(removed, record)
			delete(s.notifications, id)
		}
	}
	sortNotifications(removed)
	return removed, nil
}

func sortNotifications(records []domain.NotificationRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
