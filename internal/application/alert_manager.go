package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/domain"
	"github.com/stoik/phishcatch/internal/logger"
	"github.com/stoik/phishcatch/internal/ports"
)

// ErrInvalidButton is returned for a button index the reuse notification does not have
var ErrInvalidButton = errors.New("invalid notification button")

const (
	reuseNotificationTitle    = "PhishCatch Alert"
	reuseNotificationPriority = 2
)

// ButtonAction is what the user said about a reuse notification
type ButtonAction int

const (
	ActionFalsePositive ButtonAction = iota
	ActionNotMine
)

var reuseButtons = []string{
	ActionFalsePositive: "This is a false positive",
	ActionNotMine:       "That wasn't my enterprise password",
}

func (a ButtonAction) String() string {
	switch a {
	case ActionFalsePositive:
		return "false_positive"
	case ActionNotMine:
		return "not_mine"
	default:
		return fmt.Sprintf("button_%d", int(a))
	}
}

// Resolution is passed to the ResolutionHook once a notification has been resolved by the user
type Resolution struct {
	Record domain.NotificationRecord
	Action ButtonAction
}

// ResolutionHook decides what a button means beyond clearing the notification
type ResolutionHook func(ctx context.Context, resolution Resolution)

// AlertOptions are the user-facing alerting policies
type AlertOptions struct {
	DisplayReuseAlerts bool
	ExpireHashOnUse    bool
	// NotificationTTL bounds how long an unanswered notification stays registered
	NotificationTTL time.Duration
}

// AlertManager turns detections into server alerts and deduplicated local notifications.
//
// Reuse:   Detected -> ServerAlertSent -> [DisplayReuseAlerts] NotificationShown -> Resolved
// Resolved is reached by a button click or by Sweep.
type AlertManager struct {
	notifications ports.NotificationStore
	hashes        ports.PasswordHashStore
	surface       ports.NotificationSurface
	sender        ports.AlertSender
	tasks         *backgroundTasks
	opts          AlertOptions
	hook          ResolutionHook
	log           *slog.Logger
	now           func() time.Time
}

func NewAlertManager(
	notifications ports.NotificationStore,
	hashes ports.PasswordHashStore,
	surface ports.NotificationSurface,
	sender ports.AlertSender,
	opts AlertOptions,
	log *slog.Logger,
) *AlertManager {
	log = log.With(slog.String("component", "alert_manager"))
	m := &AlertManager{
		notifications: notifications,
		hashes:        hashes,
		surface:       surface,
		sender:        sender,
		tasks:         newBackgroundTasks(log),
		opts:          opts,
		log:           log,
		now:           time.Now,
	}
	m.hook = m.logResolution
	return m
}

// SetResolutionHook replaces the default hook, which only logs
func (m *AlertManager) SetResolutionHook(hook ResolutionHook) {
	if hook != nil {
		m.hook = hook
	}
}

// Wait blocks until every alert and notification started so far has completed
func (m *AlertManager) Wait() {
	m.tasks.Wait()
}

// HandleReuse runs the reuse-alert flow for a password found in the store.
// The server alert and the notification run in the background; hash expiry is done before returning.
func (m *AlertManager) HandleReuse(ctx context.Context, event domain.PasswordEvent, record *domain.PasswordHashRecord) {
	alert := domain.NewReuseAlert(event, *record)
	detached := context.WithoutCancel(ctx)

	m.log.Warn("Enterprise password reuse detected",
		slog.String("alert_id", alert.ID.String()),
		slog.String("url", event.URL),
		slog.String("associated_hostname", record.Hostname),
	)

	m.sendAlert(detached, alert)

	if m.opts.DisplayReuseAlerts {
		hash := record.Hash
		url := event.URL
		m.tasks.Go("reuse_notification", func() {
			m.showReuseNotification(detached, hash, url)
		})
	}

	if m.opts.ExpireHashOnUse {
		if err := m.hashes.DeletePasswordHash(ctx, record.Hash); err != nil {
			m.log.Error("Failed to expire password hash", logger.Err(err))
		} else {
			m.log.Info("Password hash expired after use", slog.String("associated_hostname", record.Hostname))
		}
	}
}

// HandleDomMatch sends a server alert for a page cloning an enterprise login page
func (m *AlertManager) HandleDomMatch(ctx context.Context, url string, match domain.DomMatch) {
	alert := domain.NewDomHashAlert(url, match)

	m.log.Warn("Page structure matches an enterprise login page",
		slog.String("alert_id", alert.ID.String()),
		slog.String("url", url),
		slog.Any("matched_domains", match.MatchedDomains),
	)

	m.sendAlert(context.WithoutCancel(ctx), alert)
}

func (m *AlertManager) sendAlert(ctx context.Context, alert domain.AlertContent) {
	m.tasks.Go("server_alert", func() {
		if err := m.sender.SendAlert(ctx, alert); err != nil {
			m.log.Error("Failed to send server alert",
				slog.String("alert_id", alert.ID.String()),
				logger.Err(err),
			)
		}
	})
}

func (m *AlertManager) showReuseNotification(ctx context.Context, hash domain.ContentHash, url string) {
	id, err := m.surface.Create(ctx, domain.Notification{
		Title:              reuseNotificationTitle,
		Message:            fmt.Sprintf("PhishCatch has detected enterprise password re-use on the url: %s\n", url),
		Buttons:            append([]string(nil), reuseButtons...),
		RequireInteraction: true,
		Priority:           reuseNotificationPriority,
	})
	if err != nil {
		m.log.Error("Failed to create notification", logger.Err(err))
		return
	}

	// The id only exists once the surface has created the notification
	record := &domain.NotificationRecord{
		ID:        id,
		Hash:      hash,
		URL:       url,
		CreatedAt: m.now().UTC(),
	}
	if err := m.notifications.PutNotification(ctx, record); err != nil {
		m.log.Error("Failed to register notification", slog.String("notification_id", id), logger.Err(err))
		// Unregistered notifications can be neither answered nor swept
		if err := m.surface.Clear(ctx, id); err != nil {
			m.log.Error("Failed to clear unregistered notification", slog.String("notification_id", id), logger.Err(err))
		}
	}
}

// HandleButtonClick resolves the notification the user answered
func (m *AlertManager) HandleButtonClick(ctx context.Context, id string, buttonIndex int) error {
	if buttonIndex < 0 || buttonIndex >= len(reuseButtons) {
		return fmt.Errorf("%w: %d", ErrInvalidButton, buttonIndex)
	}

	record, err := m.notifications.GetNotification(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get notification: %w", err)
	}
	if record == nil {
		return domain.ErrNotFound
	}

	// A concurrent sweep may have won
	if err := m.notifications.DeleteNotification(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	if err := m.surface.Clear(ctx, id); err != nil {
		m.log.Error("Failed to clear notification", slog.String("notification_id", id), logger.Err(err))
	}

	m.hook(ctx, Resolution{Record: *record, Action: ButtonAction(buttonIndex)})
	return nil
}

func (m *AlertManager) logResolution(ctx context.Context, resolution Resolution) {
	m.log.Info("Notification resolved",
		slog.String("notification_id", resolution.Record.ID),
		slog.String("action", resolution.Action.String()),
		slog.String("url", resolution.Record.URL),
	)
}

// Pending returns the registered notifications still awaiting an answer, oldest first
func (m *AlertManager) Pending(ctx context.Context) ([]domain.NotificationRecord, error) {
	records, err := m.notifications.ListNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records, nil
}

// Sweep removes notifications nobody answered within the TTL and returns how many were removed
func (m *AlertManager) Sweep(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.opts.NotificationTTL)

	removed, err := m.notifications.DeleteNotificationsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep notifications: %w", err)
	}

	for _, record := range removed {
		if err := m.surface.Clear(ctx, record.ID); err != nil {
			m.log.Error("Failed to clear swept notification", slog.String("notification_id", record.ID), logger.Err(err))
		}
	}

	if len(removed) > 0 {
		m.log.Info("Swept stale notifications", slog.Int("count", len(removed)))
	}
	return len(removed), nil
}
