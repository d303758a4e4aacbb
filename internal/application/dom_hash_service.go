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

// DomHashService saves fingerprints of enterprise login pages and compares visited pages against them.
// Records are keyed by registrable domain so that sso.enterprise.example and portal.enterprise.example
// do not match each other.
type DomHashService struct {
	store ports.DomHashStore
	now   func() time.Time
}

func NewDomHashService(store ports.DomHashStore) *DomHashService {
	return &DomHashService{
		store: store,
		now:   time.Now,
	}
}

func pageDomain(url string) (string, error) {
	host := detection.HostFromURL(url)
	if host == "" {
		return "", fmt.Errorf("invalid page url %q", url)
	}
	return detection.RegistrableDomain(host), nil
}

// SaveDomHash fingerprints dom and stores it under the page's domain
func (s *DomHashService) SaveDomHash(ctx context.Context, dom, url string) (*domain.DomHashRecord, error) {
	pd, err := pageDomain(url)
	if err != nil {
		return nil, err
	}

	hash, err := detection.DomFingerprint(dom)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint dom: %w", err)
	}

	record := &domain.DomHashRecord{
		Hash:      hash,
		Domain:    pd,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.SaveDomHash(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save dom hash: %w", err)
	}
	return record, nil
}

// CheckDomHash reports whether dom has the structure of a login page saved under another domain.
// A page never matches its own domain. A DOM without structure never matches.
func (s *DomHashService) CheckDomHash(ctx context.Context, dom, url string) (domain.DomMatch, error) {
	pd, err := pageDomain(url)
	if err != nil {
		return domain.DomMatch{}, err
	}

	hash, err := detection.DomFingerprint(dom)
	if errors.Is(err, detection.ErrEmptyDom) {
		return domain.DomMatch{Domain: pd}, nil
	}
	if err != nil {
		return domain.DomMatch{Domain: pd}, fmt.Errorf("failed to fingerprint dom: %w", err)
	}

	records, err := s.store.FindDomHashes(ctx, hash)
	if err != nil {
		return domain.DomMatch{Domain: pd, Hash: hash}, fmt.Errorf("failed to find dom hashes: %w", err)
	}

	match := domain.DomMatch{Hash: hash, Domain: pd}
	for _, record := range records {
		if record.Domain != pd {
			match.MatchedDomains = append(match.MatchedDomains, record.Domain)
		}
	}
	match.Matched = len(match.MatchedDomains) > 0
	return match, nil
}
