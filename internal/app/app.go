// Package app wires configuration into the adapters and services used by the CLI commands
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/adapters/alerting"
	"github.com/stoik/phishcatch/internal/adapters/classifier"
	httpadapter "github.com/stoik/phishcatch/internal/adapters/http"
	"github.com/stoik/phishcatch/internal/adapters/notifications"
	"github.com/stoik/phishcatch/internal/adapters/storage"
	"github.com/stoik/phishcatch/internal/application"
	"github.com/stoik/phishcatch/internal/config"
	"github.com/stoik/phishcatch/internal/domain/detection"
	"github.com/stoik/phishcatch/internal/ports"
)

type App struct {
	Config     *config.Config
	Store      ports.Storage
	Classifier ports.DomainClassifier
	Inbox      *notifications.Inbox
	Hashes     *application.PasswordHashService
	Alerts     *application.AlertManager
	Router     *application.CredentialGuardService
	log        *slog.Logger
}

// New builds the application from cfg. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	hasher, err := detection.NewPasswordHasher(cfg.Hash.Salt, detection.HashParams{
		Time:      cfg.Hash.Time,
		MemoryKiB: cfg.Hash.MemoryKiB,
		Threads:   cfg.Hash.Threads,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Store:      store,
		Classifier: newClassifier(cfg.Classifier, log),
		Inbox:      notifications.NewInbox(),
		log:        log,
	}

	a.Hashes = application.NewPasswordHashService(hasher, store)
	a.Alerts = application.NewAlertManager(
		store,
		store,
		a.Inbox,
		alerting.NewHTTPSender(cfg.Alerts.Endpoint, log),
		application.AlertOptions{
			DisplayReuseAlerts: cfg.Alerts.DisplayReuseAlerts,
			ExpireHashOnUse:    cfg.Alerts.ExpireHashOnUse,
			NotificationTTL:    cfg.Alerts.NotificationTTL,
		},
		log,
	)
	a.Router = application.NewCredentialGuardService(
		a.Classifier,
		a.Hashes,
		application.NewDomHashService(store),
		store,
		a.Alerts,
		log,
	)
	return a, nil
}

func newClassifier(cfg config.Classifier, log *slog.Logger) ports.DomainClassifier {
	if cfg.URL != "" {
		log.Info("Using remote domain classifier", slog.String("url", cfg.URL))
		return classifier.NewRemoteClassifier(cfg.URL, cfg.CacheTTL)
	}

	log.Info("Using configured domain lists",
		slog.Int("enterprise", len(cfg.EnterpriseDomains)),
		slog.Int("dangerous", len(cfg.DangerousDomains)),
		slog.Bool("lookalikes", cfg.DetectLookalikes),
	)
	return detection.NewListClassifier(cfg.EnterpriseDomains, cfg.DangerousDomains, cfg.DetectLookalikes)
}

// Handler returns the HTTP API
func (a *App) Handler() http.Handler {
	return httpadapter.New(a.Router, a.Alerts, a.Inbox, a.log)
}

// RunCleanup sweeps stale notifications until ctx is done
func (a *App) RunCleanup(ctx context.Context) {
	application.RunCleanup(ctx, a.Alerts, a.Config.Alerts.CleanupInterval, a.log)
}

// Close waits for in-flight background work, then releases the classifier and the store
func (a *App) Close() error {
	a.Router.Wait()
	if closer, ok := a.Classifier.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("failed to close classifier: %w", err)
		}
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
