package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stoik/phishcatch/internal/adapters/notifications"
	"github.com/stoik/phishcatch/internal/adapters/storage"
	"github.com/stoik/phishcatch/internal/domain"
	"github.com/stoik/phishcatch/internal/domain/detection"
	"github.com/stoik/phishcatch/internal/logger"
	"github.com/stoik/phishcatch/internal/ports"
)

const loginDOM = `<form method="post"><input type="text" name="user"><input type="password" name="pass"><button type="submit">Sign in</button></form>`

// MockClassifier is a mock for ports.DomainClassifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, host string) (domain.DomainType, error) {
	args := m.Called(ctx, host)
	return args.Get(0).(domain.DomainType), args.Error(1)
}

// recordingSender captures alerts
type recordingSender struct {
	mu     sync.Mutex
	alerts []domain.AlertContent
	err    error
}

func (s *recordingSender) SendAlert(ctx context.Context, alert domain.AlertContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return s.err
}

func (s *recordingSender) Alerts() []domain.AlertContent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AlertContent(nil), s.alerts...)
}

// failingStore fails selected operations of an otherwise working store and records saved usernames
type failingStore struct {
	*storage.MemoryStore
	failGet  bool
	failSave bool
	failPut  bool

	mu        sync.Mutex
	usernames []domain.UsernameRecord
}

var errStorageDown = errors.New("storage unavailable")

func (s *failingStore) GetPasswordHash(ctx context.Context, hash domain.ContentHash) (*domain.PasswordHashRecord, error) {
	if s.failGet {
		return nil, errStorageDown
	}
	return s.MemoryStore.GetPasswordHash(ctx, hash)
}

func (s *failingStore) PutNotification(ctx context.Context, record *domain.NotificationRecord) error {
	if s.failPut {
		return errStorageDown
	}
	return s.MemoryStore.PutNotification(ctx, record)
}

func (s *failingStore) SaveUsername(ctx context.Context, record *domain.UsernameRecord) error {
	if err := s.MemoryStore.SaveUsername(ctx, record); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usernames = append(s.usernames, *record)
	return nil
}

// savedUsernames returns the username records written for hostname
func (s *failingStore) savedUsernames(hostname string) []domain.UsernameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]domain.UsernameRecord, 0)
	for _, record := range s.usernames {
		if record.Hostname == hostname {
			records = append(records, record)
		}
	}
	return records
}

func (s *failingStore) SavePasswordHash(ctx context.Context, record *domain.PasswordHashRecord) error {
	if s.failSave {
		return errStorageDown
	}
	return s.MemoryStore.SavePasswordHash(ctx, record)
}

type harness struct {
	store    *storage.MemoryStore
	wrapped  *failingStore
	inbox    *notifications.Inbox
	sender   *recordingSender
	hasher   *detection.PasswordHasher
	alerts   *AlertManager
	service  *CredentialGuardService
	hashes   *PasswordHashService
	domStore *DomHashService
}

type harnessOptions struct {
	classifier ports.DomainClassifier
	alertOpts  *AlertOptions
	failGet    bool
	failSave   bool
	failPut    bool
}

func newTestHasher(t *testing.T) *detection.PasswordHasher {
	t.Helper()
	hasher, err := detection.NewPasswordHasher("test-salt", detection.HashParams{Time: 1, MemoryKiB: 64, Threads: 1})
	require.NoError(t, err)
	return hasher
}

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	memory := storage.NewMemoryStore()
	store := &failingStore{MemoryStore: memory, failGet: opts.failGet, failSave: opts.failSave, failPut: opts.failPut}

	classifier := opts.classifier
	if classifier == nil {
		classifier = detection.NewListClassifier(
			[]string{"enterprise.example"},
			[]string{"phish.example"},
			false,
		)
	}

	alertOpts := AlertOptions{DisplayReuseAlerts: true, NotificationTTL: time.Minute}
	if opts.alertOpts != nil {
		alertOpts = *opts.alertOpts
	}

	h := &harness{
		store:   memory,
		wrapped: store,
		inbox:  notifications.NewInbox(),
		sender: &recordingSender{},
		hasher: newTestHasher(t),
	}
	log := logger.Discard()

	h.hashes = NewPasswordHashService(h.hasher, store)
	h.domStore = NewDomHashService(store)
	h.alerts = NewAlertManager(store, store, h.inbox, h.sender, alertOpts, log)
	h.service = NewCredentialGuardService(classifier, h.hashes, h.domStore, store, h.alerts, log)
	return h
}

func (h *harness) notificationRecords(t *testing.T) []domain.NotificationRecord {
	t.Helper()
	records, err := h.store.ListNotifications(context.Background())
	require.NoError(t, err)
	return records
}

func (h *harness) shown(t *testing.T) []domain.Notification {
	t.Helper()
	list, err := h.inbox.List(context.Background())
	require.NoError(t, err)
	return list
}
