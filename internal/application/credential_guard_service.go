package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/domain"
	"github.com/stoik/phishcatch/internal/domain/detection"
	"github.com/stoik/phishcatch/internal/logger"
	"github.com/stoik/phishcatch/internal/ports"
)

// CredentialGuardService routes page events from the extension.
//
// Every event is classified at most once and the result is threaded through the branch: the
// classifier may answer differently a moment later. Storage and classifier failures are logged
// and degrade to the outcome that raises no alert.
type CredentialGuardService struct {
	classifier ports.DomainClassifier
	passwords  *PasswordHashService
	domHashes  *DomHashService
	usernames  ports.UsernameStore
	alerts     *AlertManager
	tasks      *backgroundTasks
	log        *slog.Logger
	now        func() time.Time
}

// NewCredentialGuardService creates the router with dependency injection
func NewCredentialGuardService(
	classifier ports.DomainClassifier,
	passwords *PasswordHashService,
	domHashes *DomHashService,
	usernames ports.UsernameStore,
	alerts *AlertManager,
	log *slog.Logger,
) *CredentialGuardService {
	log = log.With(slog.String("component", "credential_guard"))
	return &CredentialGuardService{
		classifier: classifier,
		passwords:  passwords,
		domHashes:  domHashes,
		usernames:  usernames,
		alerts:     alerts,
		tasks:      newBackgroundTasks(log),
		log:        log,
		now:        time.Now,
	}
}

// Wait blocks until every background write and alert started so far has completed
func (s *CredentialGuardService) Wait() {
	s.tasks.Wait()
	s.alerts.Wait()
}

// Route dispatches an event to its handler
func (s *CredentialGuardService) Route(ctx context.Context, event domain.Event) (domain.RouteResult, error) {
	switch ev := event.(type) {
	case domain.UsernameEvent:
		return s.handleUsername(ctx, ev), nil
	case domain.PasswordEvent:
		return s.handlePassword(ctx, ev), nil
	case domain.DomStringEvent:
		return s.handleDomString(ctx, ev), nil
	default:
		return domain.RouteResult{}, fmt.Errorf("unsupported event type %T", event)
	}
}

// DomainType classifies the host of url, Ignored when the classifier is unavailable
func (s *CredentialGuardService) DomainType(ctx context.Context, url string) domain.DomainType {
	host := detection.HostFromURL(url)
	if host == "" {
		s.log.Debug("Event without usable host", slog.String("url", url))
		return domain.DomainIgnored
	}

	t, err := s.classifier.Classify(ctx, host)
	if err != nil {
		s.log.Warn("Classifier unavailable, treating host as ignored",
			slog.String("host", host),
			logger.Err(err),
		)
		return domain.DomainIgnored
	}
	return t
}

// HandleUsername records the username and the page fingerprint when the page is enterprise
func (s *CredentialGuardService) HandleUsername(ctx context.Context, event domain.UsernameEvent) domain.DomainType {
	return s.handleUsername(ctx, event).DomainType
}

func (s *CredentialGuardService) handleUsername(ctx context.Context, event domain.UsernameEvent) domain.RouteResult {
	result := domain.RouteResult{Kind: domain.EventUsername, DomainType: s.DomainType(ctx, event.URL)}
	if result.DomainType != domain.DomainEnterprise {
		return result
	}

	detached := context.WithoutCancel(ctx)
	hostname := detection.HostFromURL(event.URL)

	// The two writes are independent
	if event.Username != "" {
		s.tasks.Go("save_username", func() {
			err := s.usernames.SaveUsername(detached, &domain.UsernameRecord{
				Username:  event.Username,
				Hostname:  hostname,
				CreatedAt: s.now().UTC(),
			})
			if err != nil {
				s.log.Error("Failed to save username", slog.String("hostname", hostname), logger.Err(err))
			}
		})
	}

	s.tasks.Go("save_dom_hash", func() {
		record, err := s.domHashes.SaveDomHash(detached, event.DOM, event.URL)
		switch {
		case errors.Is(err, detection.ErrEmptyDom):
			s.log.Debug("No DOM structure to fingerprint", slog.String("hostname", hostname))
		case err != nil:
			s.log.Error("Failed to save DOM hash", slog.String("hostname", hostname), logger.Err(err))
		default:
			s.log.Debug("DOM hash saved", slog.String("domain", record.Domain))
		}
	})

	return result
}

// HandlePassword decides what a submitted password means
func (s *CredentialGuardService) HandlePassword(ctx context.Context, event domain.PasswordEvent) domain.PasswordOutcome {
	return s.handlePassword(ctx, event).Outcome
}

func (s *CredentialGuardService) handlePassword(ctx context.Context, event domain.PasswordEvent) domain.RouteResult {
	result := domain.RouteResult{Kind: domain.EventPassword, DomainType: domain.DomainIgnored}

	if event.Password == "" {
		result.Outcome = domain.OutcomeIgnoredDomain
		return result
	}

	result.DomainType = s.DomainType(ctx, event.URL)

	switch result.DomainType {
	case domain.DomainEnterprise:
		if !event.Save {
			result.Outcome = domain.OutcomeEnterpriseNoSave
			return result
		}

		hostname := detection.HostFromURL(event.URL)
		if _, err := s.passwords.HashAndSave(ctx, event.Password, event.Username, hostname); err != nil {
			s.log.Error("Failed to save enterprise password hash", slog.String("hostname", hostname), logger.Err(err))
		} else {
			s.log.Info("Enterprise password hash saved", slog.String("hostname", hostname))
		}
		result.Outcome = domain.OutcomeEnterpriseSave

	case domain.DomainDangerous:
		record, err := s.passwords.Lookup(ctx, event.Password)
		if err != nil {
			s.log.Error("Password hash lookup failed, assuming no reuse", logger.Err(err))
		}
		if record == nil {
			result.Outcome = domain.OutcomeNoReuse
			return result
		}

		s.alerts.HandleReuse(ctx, event, record)
		result.Outcome = domain.OutcomeReuseAlert

	default:
		result.Outcome = domain.OutcomeIgnoredDomain
	}

	return result
}

// HandleDomString compares the page structure against saved enterprise login pages, whatever the page's domain
func (s *CredentialGuardService) HandleDomString(ctx context.Context, event domain.DomStringEvent) domain.DomMatch {
	match := s.handleDomString(ctx, event).DomMatch
	if match == nil {
		return domain.DomMatch{}
	}
	return *match
}

func (s *CredentialGuardService) handleDomString(ctx context.Context, event domain.DomStringEvent) domain.RouteResult {
	result := domain.RouteResult{Kind: domain.EventDomString}

	match, err := s.domHashes.CheckDomHash(ctx, event.DOM, event.URL)
	if err != nil {
		s.log.Error("DOM hash check failed", slog.String("url", event.URL), logger.Err(err))
	}
	result.DomMatch = &match

	if match.Matched {
		s.alerts.HandleDomMatch(ctx, event.URL, match)
	}
	return result
}
