package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stoik/phishcatch/internal/domain"
	"github.com/stoik/phishcatch/internal/domain/detection"
	"github.com/stoik/phishcatch/internal/ports"
)

// PasswordHashService is the content-addressed password store: digest on the way in, digest to look up
type PasswordHashService struct {
	hasher *detection.PasswordHasher
	store  ports.PasswordHashStore
	now    func() time.Time
}

func NewPasswordHashService(hasher *detection.PasswordHasher, store ports.PasswordHashStore) *PasswordHashService {
	return &PasswordHashService{
		hasher: hasher,
		store:  store,
		now:    time.Now,
	}
}

// HashAndSave digests password and stores it for hostname, replacing any record with the same digest
func (s *PasswordHashService) HashAndSave(ctx context.Context, password, username, hostname string) (domain.ContentHash, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}

	record := &domain.PasswordHashRecord{
		Hash:      s.hasher.Hash(password),
		Hostname:  hostname,
		Username:  username,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SavePasswordHash(ctx, record); err != nil {
		return "", fmt.Errorf("failed to save password hash: %w", err)
	}
	return record.Hash, nil
}

// Lookup returns the record saved for this exact password, or nil
func (s *PasswordHashService) Lookup(ctx context.Context, password string) (*domain.PasswordHashRecord, error) {
	if password == "" {
		return nil, nil
	}

	record, err := s.store.GetPasswordHash(ctx, s.hasher.Hash(password))
	if err != nil {
		return nil, fmt.Errorf("failed to look up password hash: %w", err)
	}
	return record, nil
}

// Remove deletes a record by digest
func (s *PasswordHashService) Remove(ctx context.Context, hash domain.ContentHash) error {
	if err := s.store.DeletePasswordHash(ctx, hash); err != nil {
		return fmt.Errorf("failed to remove password hash: %w", err)
	}
	return nil
}
