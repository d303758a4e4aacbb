// Package httpadapter exposes the event router to the browser extension.
//
//	POST /api/v1/events                                  route a page event
//	GET  /api/v1/domains/{host}                          classify a host
//	GET  /api/v1/notifications                           displayed notifications
//	POST /api/v1/notifications/{id}/buttons/{index}      answer a notification
//	POST /api/v1/traffic/conversation                    inspect an outbound chat request
//	GET  /api/v1/health
package httpadapter

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	"github.com/stoik/phishcatch/internal/ports"
)

// New creates a *chi.Mux with every operation registered through huma
func New(router EventRouter, buttons ButtonHandler, surface ports.NotificationSurface, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	api := humachi.New(mux, huma.DefaultConfig("PhishCatch API", "1.0.0"))

	mws := huma.Middlewares{NewRequestLogger(log).Middleware()}
	NewHandler(router, buttons, surface, log, mws).SetupRoutes(api)

	return mux
}
